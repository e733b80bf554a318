package telegram

// The pinned Bot API library predates web_app buttons, so the markup
// types are declared here. MessageConfig.ReplyMarkup is an interface{}
// and Telegram only cares about the JSON shape on the wire.

// WebAppInfo describes a Web App opened by an inline keyboard button.
type WebAppInfo struct {
	URL string `json:"url"`
}

// WebAppButton is an inline keyboard button that opens a Web App.
type WebAppButton struct {
	Text   string     `json:"text"`
	WebApp WebAppInfo `json:"web_app"`
}

// WebAppKeyboardMarkup is an inline keyboard made of web app buttons.
type WebAppKeyboardMarkup struct {
	InlineKeyboard [][]WebAppButton `json:"inline_keyboard"`
}

// WebAppKeyboard builds a single-button inline keyboard opening the
// given Web App URL.
func WebAppKeyboard(text, url string) WebAppKeyboardMarkup {
	return WebAppKeyboardMarkup{
		InlineKeyboard: [][]WebAppButton{{
			{Text: text, WebApp: WebAppInfo{URL: url}},
		}},
	}
}
