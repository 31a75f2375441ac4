package gate

import (
	"fmt"
	"strings"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/lang"
)

// contentPreviewLength caps the main content line of the summary block.
const contentPreviewLength = 300

type summaryStrings struct {
	Header           string
	Sender           string
	SenderAddress    string
	Recipient        string
	RecipientAddress string
	Subject          string
	Date             string
	Reference        string
	Content          string
	// ConfirmKeyword is quoted in CTA and must satisfy HasUserConfirmed.
	ConfirmKeyword string
	CTA            string
}

var summaryTables = map[lang.Code]summaryStrings{
	lang.DE: {
		Header: "Zusammenfassung deines Schreibens", Sender: "Absender", SenderAddress: "Adresse",
		Recipient: "Empfänger", RecipientAddress: "Adresse des Empfängers", Subject: "Betreff",
		Date: "Datum", Reference: "Aktenzeichen", Content: "Inhalt", ConfirmKeyword: "Ich bestätige",
		CTA: "Ist alles korrekt? Antworte mit „%s“, um das endgültige Schreiben zu erstellen, oder sag mir, was ich ändern soll.",
	},
	lang.EN: {
		Header: "Summary of your letter", Sender: "Sender", SenderAddress: "Address",
		Recipient: "Recipient", RecipientAddress: "Recipient address", Subject: "Subject",
		Date: "Date", Reference: "Reference", Content: "Content", ConfirmKeyword: "I confirm",
		CTA: "Is everything correct? Reply \"%s\" to generate the final letter, or tell me what to change.",
	},
	lang.IT: {
		Header: "Riepilogo della tua lettera", Sender: "Mittente", SenderAddress: "Indirizzo",
		Recipient: "Destinatario", RecipientAddress: "Indirizzo del destinatario", Subject: "Oggetto",
		Date: "Data", Reference: "Riferimento", Content: "Contenuto", ConfirmKeyword: "Confermo",
		CTA: "È tutto corretto? Rispondi \"%s\" per generare la lettera definitiva, oppure dimmi cosa modificare.",
	},
	lang.FR: {
		Header: "Résumé de votre lettre", Sender: "Expéditeur", SenderAddress: "Adresse",
		Recipient: "Destinataire", RecipientAddress: "Adresse du destinataire", Subject: "Objet",
		Date: "Date", Reference: "Référence", Content: "Contenu", ConfirmKeyword: "Je confirme",
		CTA: "Tout est correct ? Répondez « %s » pour générer la lettre finale, ou dites-moi ce qu'il faut modifier.",
	},
	lang.ES: {
		Header: "Resumen de tu carta", Sender: "Remitente", SenderAddress: "Dirección",
		Recipient: "Destinatario", RecipientAddress: "Dirección del destinatario", Subject: "Asunto",
		Date: "Fecha", Reference: "Referencia", Content: "Contenido", ConfirmKeyword: "Confirmo",
		CTA: "¿Está todo correcto? Responde \"%s\" para generar la carta definitiva o dime qué debo cambiar.",
	},
	lang.TR: {
		Header: "Mektubunuzun özeti", Sender: "Gönderen", SenderAddress: "Adres",
		Recipient: "Alıcı", RecipientAddress: "Alıcı adresi", Subject: "Konu",
		Date: "Tarih", Reference: "Referans", Content: "İçerik", ConfirmKeyword: "Onaylıyorum",
		CTA: "Her şey doğru mu? Son mektubu oluşturmak için \"%s\" yazın veya neyi değiştirmem gerektiğini söyleyin.",
	},
	lang.RO: {
		Header: "Rezumatul scrisorii tale", Sender: "Expeditor", SenderAddress: "Adresă",
		Recipient: "Destinatar", RecipientAddress: "Adresa destinatarului", Subject: "Subiect",
		Date: "Data", Reference: "Referință", Content: "Conținut", ConfirmKeyword: "Confirm",
		CTA: "Este totul corect? Răspunde „%s” pentru a genera scrisoarea finală sau spune-mi ce trebuie modificat.",
	},
	lang.PL: {
		Header: "Podsumowanie twojego pisma", Sender: "Nadawca", SenderAddress: "Adres",
		Recipient: "Odbiorca", RecipientAddress: "Adres odbiorcy", Subject: "Temat",
		Date: "Data", Reference: "Sygnatura", Content: "Treść", ConfirmKeyword: "Potwierdzam",
		CTA: "Czy wszystko się zgadza? Odpowiedz „%s”, aby wygenerować ostateczne pismo, lub napisz, co zmienić.",
	},
	lang.AR: {
		Header: "ملخص رسالتك", Sender: "المرسل", SenderAddress: "العنوان",
		Recipient: "المستلم", RecipientAddress: "عنوان المستلم", Subject: "الموضوع",
		Date: "التاريخ", Reference: "المرجع", Content: "المحتوى", ConfirmKeyword: "أؤكد",
		CTA: "هل كل شيء صحيح؟ أرسل \"%s\" لإنشاء الرسالة النهائية، أو أخبرني بما يجب تغييره.",
	},
	lang.RU: {
		Header: "Сводка вашего письма", Sender: "Отправитель", SenderAddress: "Адрес",
		Recipient: "Получатель", RecipientAddress: "Адрес получателя", Subject: "Тема",
		Date: "Дата", Reference: "Номер дела", Content: "Содержание", ConfirmKeyword: "Подтверждаю",
		CTA: "Всё верно? Ответьте «%s», чтобы создать окончательное письмо, или напишите, что нужно изменить.",
	},
	lang.UK: {
		Header: "Підсумок вашого листа", Sender: "Відправник", SenderAddress: "Адреса",
		Recipient: "Одержувач", RecipientAddress: "Адреса одержувача", Subject: "Тема",
		Date: "Дата", Reference: "Номер справи", Content: "Зміст", ConfirmKeyword: "Підтверджую",
		CTA: "Усе правильно? Відповідайте «%s», щоб створити остаточний лист, або напишіть, що потрібно змінити.",
	},
}

// BuildSummaryBlock renders data as a localized, labeled block followed by
// the confirmation call to action. Empty fields are left out.
func BuildSummaryBlock(data domain.DocumentSummary, l lang.Code) string {
	t := lang.Lookup(summaryTables, l)

	var sb strings.Builder
	sb.WriteString(t.Header)
	sb.WriteString("\n")

	line := func(label, value string) {
		value = strings.Join(strings.Fields(value), " ")
		if value == "" {
			return
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	line(t.Sender, data.SenderName)
	line(t.SenderAddress, data.SenderAddress)
	line(t.Recipient, data.RecipientName)
	line(t.RecipientAddress, data.RecipientAddress)
	line(t.Subject, data.Subject)
	line(t.Date, data.Date)
	line(t.Reference, data.Reference)

	content := strings.Join(strings.Fields(data.MainContent), " ")
	if preview, cut := lang.Truncate(content, contentPreviewLength); cut {
		content = preview + "…"
	}
	line(t.Content, content)

	sb.WriteString("\n")
	fmt.Fprintf(&sb, t.CTA, t.ConfirmKeyword)
	return sb.String()
}
