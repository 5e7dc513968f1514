package analyze

// NotesPrompt is the fixed instruction prepended to every transcript
// before it is sent for summarization. It asks the model to produce a
// Notion-ready teaching handout.
const NotesPrompt = "假設您是一位專業講師，請依據以下文字內容，幫我撰寫一份適合放入 Notion 教學模板的教學講義。內容主題來自 [txt字幕輸出後] 的內容，請依格式完成：\n\n" +
	"1. 開場導語\n   - 用簡單易懂的語言說明主題的重要性與學習價值。\n\n" +
	"2. 教學重點\n   - 條列您在內容中看見的所有核心知識點，並為每個知識點撰寫 2-3 句的簡短說明，與白話解釋，並且提供一個舉例與回答。\n\n" +
	"3. 一個實作任務\n   - 提供逐步指引，讓學員能夠親自應用所學。\n   - 描述兩個真實應用情境，幫助學員理解學以致用。\n\n" +
	"4. 結語與思考題\n   - 撰寫簡短的收尾語，鼓勵學員持續學習。\n   - 提供 1-2 個思考題，讓學員反思並能與日常生活/工作連結。\n\n"

// systemInstruction steers the chat-completion provider toward
// structured teaching content.
const systemInstruction = "你是專業講師與教學設計助理，請生成結構化、清晰、可教學的內容。"

// BuildPrompt combines the fixed notes instruction with the transcript.
func BuildPrompt(text string) string {
	return NotesPrompt + "\n\n" + text
}
