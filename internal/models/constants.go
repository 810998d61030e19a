package models

const (
	DefaultChunkSize = 4000
	DefaultTopK      = 3
	ContextSeparator = "\n---\n"

	// NeedDocumentMessage is returned instead of a generated answer when nothing has been ingested.
	NeedDocumentMessage = "You need to provide a PDF document before asking questions."
)

// DefaultSeparators are tried coarsest to finest: paragraph, line, sentence end, clause, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

var (
	SystemPromptTemplate = `You are a helpful assistant who answers questions using the document extracts given below.
Keep answers short and to the point. Each extract is tagged with its filename and page.
When you use an extract, cite it at the end of the sentence as (filename, page N).
If the extracts do not contain the answer, reply "Not applicable".

<extracts>
%s
</extracts>
`

	ExtractTemplate = `<extract filename="%s" page="%d" source="%s">
%s
</extract>`
)
