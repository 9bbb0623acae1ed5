package tools

// Envelope is the uniform outcome of a tool invocation: either success text
// or error text with IsError set.
type Envelope struct {
	Text    string
	IsError bool
}

func success(text string) Envelope {
	return Envelope{Text: text}
}

func failure(err error) Envelope {
	return Envelope{Text: "Error: " + err.Error(), IsError: true}
}
