package scope

import "lexora-chat/internal/lang"

var refusals = map[lang.Code]string{
	lang.DE: "Ich kann nur bei behördlichen und rechtlichen Schreiben helfen, zum Beispiel Briefe vom Finanzamt, Jobcenter, von der SCHUFA oder Bußgeldbescheide. Wie kann ich dir bei einem solchen Dokument helfen?",
	lang.EN: "I can only help with bureaucratic and legal documents, such as letters from the tax office, the Jobcenter, SCHUFA or fines. How can I help you with a document like that?",
	lang.IT: "Posso aiutarti solo con documenti burocratici e legali, ad esempio lettere dell'ufficio delle imposte, del Jobcenter, della SCHUFA o multe. Come posso aiutarti con un documento di questo tipo?",
	lang.FR: "Je peux uniquement vous aider avec des documents administratifs et juridiques, par exemple des courriers des impôts, du Jobcenter, de la SCHUFA ou des amendes. Comment puis-je vous aider avec un tel document ?",
	lang.ES: "Solo puedo ayudarte con documentos burocráticos y legales, por ejemplo cartas de Hacienda, del Jobcenter, de la SCHUFA o multas. ¿Cómo puedo ayudarte con un documento de ese tipo?",
	lang.TR: "Yalnızca resmi ve hukuki belgeler konusunda yardımcı olabilirim, örneğin vergi dairesi, Jobcenter, SCHUFA mektupları veya para cezaları. Böyle bir belgeyle ilgili nasıl yardımcı olabilirim?",
	lang.RO: "Pot ajuta doar cu documente birocratice și juridice, de exemplu scrisori de la fisc, de la Jobcenter, de la SCHUFA sau amenzi. Cum te pot ajuta cu un astfel de document?",
	lang.PL: "Mogę pomóc wyłącznie w sprawach pism urzędowych i prawnych, na przykład listów z urzędu skarbowego, Jobcenter, SCHUFA lub mandatów. Jak mogę pomóc w takiej sprawie?",
	lang.AR: "يمكنني المساعدة فقط في المستندات الإدارية والقانونية، مثل رسائل مكتب الضرائب أو مركز التوظيف أو شركة SCHUFA أو الغرامات. كيف يمكنني مساعدتك في مستند من هذا النوع؟",
	lang.RU: "Я могу помочь только с официальными и юридическими документами, например письмами из налоговой, Jobcenter, SCHUFA или штрафами. Чем я могу помочь с таким документом?",
	lang.UK: "Я можу допомогти лише з офіційними та юридичними документами, наприклад листами з податкової, Jobcenter, SCHUFA або штрафами. Чим я можу допомогти з таким документом?",
}

// RefusalMessage returns the localized reply for out-of-scope messages.
func RefusalMessage(l lang.Code) string {
	return lang.Lookup(refusals, l)
}
