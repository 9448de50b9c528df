package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "entity").
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
		case "invalid_type":
			msg = "型が不正です"
		case "required":
			msg = "必須プロパティ {field} が不足しています"
		case "unknown_key":
			msg = "未知のキー {field} です"
		case "duplicate_key":
			msg = "キー {field} が重複しています"
		case "too_short":
			msg = "空文字列は許可されていません"
		case "too_small":
			msg = "要素が不足しています"
		case "too_big":
			msg = "要素が多すぎます"
		case "pattern":
			msg = "数字のみで指定してください"
		case "parse_error":
			msg = "解析エラー"
		case "duplicate_id":
			msg = "識別子 {value} が重複しています"
		case "unknown_entity":
			msg = "entity.json に存在しないエンティティ {entity} です"
		case "unused_entity":
			msg = "エンティティ {entity} はどのレコードからも参照されていません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			msg = "invalid type"
		case "required":
			msg = "required property {field} missing"
		case "unknown_key":
			msg = "unknown key {field}"
		case "duplicate_key":
			msg = "key {field} duplicated"
		case "too_short":
			msg = "empty string not allowed"
		case "too_small":
			msg = "too few items"
		case "too_big":
			msg = "too many items"
		case "pattern":
			msg = "must contain digits only"
		case "parse_error":
			msg = "parse error"
		case "duplicate_id":
			msg = "identity {value} duplicated"
		case "unknown_entity":
			msg = "entity {entity} not declared in entity.json"
		case "unused_entity":
			msg = "entity {entity} not referenced by any record"
		}
	}
	if msg == "" {
		return code
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders; unknown placeholders are dropped
// together with their leading space.
func expand(msg string, data map[string]string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(msg, '{')
		if open < 0 {
			b.WriteString(msg)
			return b.String()
		}
		end := strings.IndexByte(msg[open:], '}')
		if end < 0 {
			b.WriteString(msg)
			return b.String()
		}
		end += open
		v := data[msg[open+1:end]]
		if v == "" {
			b.WriteString(strings.TrimSuffix(msg[:open], " "))
		} else {
			b.WriteString(msg[:open])
			b.WriteString("'" + v + "'")
		}
		msg = msg[end+1:]
	}
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
