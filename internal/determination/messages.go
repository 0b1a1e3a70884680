package determination

// Fixed wording of the determinations. Amount placeholders take 万円 figures
// formatted with decimal.String.
const (
	msgOfficeOversight = "%sへ依頼してください"
	msgOfficePrimary   = "%sで事務を行います"

	msgFormFormalContract   = "【契約書が必要】(%s万円超)"
	msgFormAcknowledgment   = "【請書が必要】(%s万円超%s万円以内)"
	msgFormNotRequired      = "【契約書・請書は原則不要】(%s万円以下)"
	msgFormBiddingDependent = "入札により、落札金額に応じて契約書または請書が必要です。"

	noteFormFormalContract = "**【契約締結形式】** 契約書が必要です。落札決定後速やかに契約書(案)を作成し、契約締結すること。"
	noteFormAcknowledgment = "**【契約締結形式】** 請書(案)を作成し、契約締結すること。"
	noteFormNotRequired    = "**【契約締結形式】** 契約書・請書は原則不要です。発注書や事務処理要領に基づき、適切に執行してください。"

	msgArticlePrimary = "施行令第167条の2第1項第1号 (少額随契 - 上限%s万円)"
	msgArticleSpecial = "施行令第167条の2第1項第%d号 (%s)"
	msgArticleBidding = "随意契約の適用不可"

	msgQuotationSinglePrimary = "原則として1者のみの徴取で足りる (規則第14条第1項第3号)"
	msgQuotationSingleSpecial = "原則として1者のみの徴取で足りる (規則第14条第1項による)"
	msgQuotationMultiple      = "原則として2者以上の徴取が必要"
	msgQuotationCompetitive   = "原則として2者以上の徴取が必要 (特殊事由により競争性を確保)"
	msgQuotationBidding       = "一般競争入札又は指名競争入札が必要です。"

	noteCompetition            = "【競争性の確保】第7/8/9号事由が重なる場合、少額でも時価や競争性を比較検討するため、原則として2者以上の見積徴取を強く推奨します。"
	notePriceEstimateWaivable  = "予定価格調書の作成は省略可能 (%s万円以下)"
	notePriceEstimateRequired  = "予定価格調書を作成すること (%s万円超)"
	notePriceEstimateMandatory = "価格が%s万円を超えているため、予定価格調書の作成は必須です。"
	noteJustificationWaiver    = "見積予定業者が複数で、執行伺書に根拠条文と見積予定業者(複数者)の記載があれば、理由書の添付は**不要**です。"
	noteJustificationCoOccur   = "【特殊事由あり】第1号優先適用ですが、特殊事由が重なる場合は「随意契約及び業者選定理由書」を作成添付し、業者選定理由を明確にすること。"
	noteJustificationSingle    = "1者随契で処理する場合、業者選定理由等を執行伺書に記載してください。"
	noteLegalBasisBidding      = "**【原則】** 地方自治法第234条第2項により、この場合は随意契約は適用できません。**一般競争入札**を原則として検討してください。"

	msgFlowPrimary = "判定は「第1号優先適用」の原則に基づき行われました。（予定価格 %s万円は上限額 %s万円以下）"
	msgFlowSpecial = "（予定価格 %s万円は第1号の上限額 %s万円を超過しています。特殊事由（第%d号）が適用されました。）"
	msgFlowBidding = "（予定価格 %s万円は上限額 %s万円を超過しており、かつ特殊事由が選択されていません。）"

	msgReasonNone = "特になし (価格要件のみ)"
	msgReasonName = "第%d号 (%s)"
)
