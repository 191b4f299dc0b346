// Package i18n translates user-facing messages. Packing failures are
// reported by reason and worded here, so callers can localise them.
package i18n

import (
	"net/http"
	"strings"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a translator with the built-in messages.
func NewTranslator() *Translator {
	return &Translator{
		messages: defaultMessages(),
	}
}

// Translate returns the message for key in locale, falling back to
// DefaultLocale and finally to the key itself.
func (t *Translator) Translate(key, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}

	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Supports reports whether messages exist for locale.
func (t *Translator) Supports(locale string) bool {
	_, ok := t.messages[locale]
	return ok
}

// LocaleFromRequest extracts the preferred locale from the Accept-Language
// header (e.g. "pt-BR,pt;q=0.9,en;q=0.8" yields "pt").
func (t *Translator) LocaleFromRequest(r *http.Request) string {
	acceptLang := r.Header.Get(AcceptLanguageHeader)
	if acceptLang == "" {
		return DefaultLocale
	}

	for _, part := range strings.Split(acceptLang, ",") {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		if idx := strings.Index(lang, "-"); idx > 0 {
			lang = lang[:idx]
		}
		lang = strings.ToLower(lang)
		if t.Supports(lang) {
			return lang
		}
	}

	return DefaultLocale
}

func defaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			ErrKeyInvalidRequest:        "Invalid request",
			ErrKeyInvalidCatalog:        "Invalid box catalog",
			ErrKeyInternalError:         "Internal error",
			ErrKeyRateLimitExceeded:     "Too many requests",
			ErrKeyCannotPack:            "Cannot pack shipment",
			ErrKeyBoxesTooSmall:         "Some of your products are too big for your boxes. Please provide larger boxes.",
			ErrKeyItemUnpackable:        "An item cannot be shipped in any of the available boxes.",
			ErrKeyItemTooBig:            "Some of your items are too big for the box you've selected.",
			ErrKeyDuplicateBoxes:        "Please use unique boxes with unique names.",
			SuggestionKeyLargerBoxes:    "Add a larger box to the catalog or split the order",
			SuggestionKeyRaiseMaxWeight: "Raise max_weight or use lighter boxes",
			SuccessKeyCatalogUpdated:    "Box catalog updated successfully",
		},
		"pt": {
			ErrKeyInvalidRequest:        "Requisição inválida",
			ErrKeyInvalidCatalog:        "Catálogo de caixas inválido",
			ErrKeyInternalError:         "Erro interno",
			ErrKeyRateLimitExceeded:     "Muitas requisições",
			ErrKeyCannotPack:            "Não é possível embalar o envio",
			ErrKeyBoxesTooSmall:         "Alguns produtos são grandes demais para as caixas. Forneça caixas maiores.",
			ErrKeyItemUnpackable:        "Um item não pode ser enviado em nenhuma das caixas disponíveis.",
			ErrKeyItemTooBig:            "Alguns itens são grandes demais para a caixa selecionada.",
			ErrKeyDuplicateBoxes:        "Use caixas com nomes únicos.",
			SuggestionKeyLargerBoxes:    "Adicione uma caixa maior ao catálogo ou divida o pedido",
			SuggestionKeyRaiseMaxWeight: "Aumente max_weight ou use caixas mais leves",
			SuccessKeyCatalogUpdated:    "Catálogo de caixas atualizado com sucesso",
		},
		"nl": {
			ErrKeyInvalidRequest:        "Ongeldig verzoek",
			ErrKeyInvalidCatalog:        "Ongeldige dooscatalogus",
			ErrKeyInternalError:         "Interne fout",
			ErrKeyRateLimitExceeded:     "Te veel verzoeken",
			ErrKeyCannotPack:            "Zending kan niet worden verpakt",
			ErrKeyBoxesTooSmall:         "Sommige producten zijn te groot voor uw dozen. Lever grotere dozen aan.",
			ErrKeyItemUnpackable:        "Een artikel past in geen van de beschikbare dozen.",
			ErrKeyItemTooBig:            "Sommige artikelen zijn te groot voor de gekozen doos.",
			ErrKeyDuplicateBoxes:        "Gebruik dozen met unieke namen.",
			SuggestionKeyLargerBoxes:    "Voeg een grotere doos toe aan de catalogus of splits de bestelling",
			SuggestionKeyRaiseMaxWeight: "Verhoog max_weight of gebruik lichtere dozen",
			SuccessKeyCatalogUpdated:    "Dooscatalogus succesvol bijgewerkt",
		},
	}
}
