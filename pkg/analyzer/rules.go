package analyzer

// RuleTableVersion identifies the active detection rule set. Bump it
// whenever the tables below change so operators can correlate routing
// shifts with rule updates.
const RuleTableVersion = 1

// codeTokens are lowercase substrings whose presence in a prompt marks
// it as code-bearing. They are declaration keywords from common
// languages, not a parser.
var codeTokens = []string{
	"def ", "class ", "import ", "const ", "let ", "var ", "function ",
	"public static void", "int main(", "async def", "export ", "module ",
	"package ", "interface ", "struct ", "enum ", "typedef",
}

// internetTokens mark a prompt as needing live or grounded data.
var internetTokens = []string{
	"web_search", "internet", "grounding", "real-time", "latest",
}

// internetCurrentTokens qualify the word "current": "current" alone is
// too common to signal recency, so it only counts next to one of these.
var internetCurrentTokens = []string{"news", "today", "now"}

// thinkingTokens mark a prompt as wanting extended reasoning.
var thinkingTokens = []string{
	"think", "reasoning", "step by step", "chain of thought",
}

// stopWords are excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "i": {}, "you": {}, "he": {},
	"she": {}, "it": {}, "we": {}, "they": {}, "what": {}, "which": {},
	"who": {}, "where": {}, "when": {}, "why": {}, "how": {},
}

// maxKeywords caps the extracted keyword set.
const maxKeywords = 20
