package summarizer

// promptPrefix is the instruction placed before the document content.
const promptPrefix = "Please provide a coherent and complete summary of the following content:\n"

// BuildPrompt wraps cleaned document content in the summarization instruction.
//
//	BuildPrompt("Hello world") // "Please provide a coherent and complete summary of the following content:\nHello world\n"
func BuildPrompt(content string) string {
	return promptPrefix + content + "\n"
}
