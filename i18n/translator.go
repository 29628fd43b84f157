package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional values substituted for {key} placeholders in the
// message (for example "from" and "to").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "not_subtype":
			msg = "{from} は {to} の部分型ではありません"
		case "ambiguous_base":
			msg = "{to} は {from} の曖昧な基底です"
		case "unwired_base":
			msg = "{from} の仮想基底 {to} が未設定です"
		case "conflicting_base":
			msg = "{from} の仮想基底 {to} に複数の実体があります"
		case "not_injectable":
			msg = "{to} は {from} の値を受け取れません"
		case "invalid_decl":
			msg = "宣言が不正です"
		case "invalid_name":
			msg = "型名 {name} が不正です"
		case "unknown_type":
			msg = "未知の型 {name} です"
		case "duplicate_type":
			msg = "型 {name} が重複しています"
		case "cyclic_base":
			msg = "型 {name} が循環しています"
		case "incompatible_version":
			msg = "書式バージョン {name} に対応していません"
		}
	default: // "en"
		switch code {
		case "not_subtype":
			msg = "{from} is not a subtype of {to}"
		case "ambiguous_base":
			msg = "{to} is an ambiguous base of {from}"
		case "unwired_base":
			msg = "virtual base {to} of {from} is not wired"
		case "conflicting_base":
			msg = "virtual base {to} of {from} has more than one instance"
		case "not_injectable":
			msg = "{to} cannot be constructed from {from}"
		case "invalid_decl":
			msg = "invalid declaration"
		case "invalid_name":
			msg = "invalid type name {name}"
		case "unknown_type":
			msg = "unknown type {name}"
		case "duplicate_type":
			msg = "duplicate type {name}"
		case "cyclic_base":
			msg = "type {name} is cyclic"
		case "incompatible_version":
			msg = "format version {name} is not supported"
		}
	}
	if msg == "" {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
