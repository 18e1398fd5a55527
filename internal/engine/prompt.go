package engine

// LLM prompt templates. Data only, no logic.

// systemPrompt is the fixed system role for every generation request.
const systemPrompt = "You are an expert academic content generator."

// InsufficientContent is returned instead of calling the LLM when content is too short.
const InsufficientContent = "Insufficient content to generate study material."

// Per-kind instructions. Args: content text.
const (
	notesPrompt = `Convert the following content into well-organized, concise study notes:

%s`

	flashcardsPrompt = `Create at least 10 flashcards from the following content. Write them in 'Question: ... Answer: ...' format:

%s`

	formulaSheetPrompt = `Extract all important formulas from the following content and list them clearly under appropriate headings:

%s`

	questionBankPrompt = `Generate at least 10 multiple-choice and short-answer questions based on the following content. Provide answers too:

%s`
)

// promptTemplates maps each material kind to its template.
var promptTemplates = map[MaterialKind]string{
	MaterialNotes:        notesPrompt,
	MaterialFlashcards:   flashcardsPrompt,
	MaterialFormulaSheet: formulaSheetPrompt,
	MaterialQuestionBank: questionBankPrompt,
}
