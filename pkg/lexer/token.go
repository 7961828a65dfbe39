package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota

	// Literals
	TokenIdent  // main, foo, x
	TokenNum    // 42
	TokenFNum   // 4.2
	TokenChar_  // 'a'
	TokenString // "hello"

	// Keywords
	TokenInt      // int
	TokenChar     // char
	TokenDouble   // double
	TokenVoid     // void
	TokenIf       // if
	TokenElse     // else
	TokenWhile    // while
	TokenFor      // for
	TokenReturn   // return
	TokenBreak    // break
	TokenContinue // continue
	TokenStatic   // static
	TokenExtern   // extern

	// Operators
	TokenAssign      // =
	TokenPlusAssign  // +=
	TokenMinusAssign // -=
	TokenPlus        // +
	TokenMinus       // -
	TokenStar        // *
	TokenSlash       // /
	TokenPercent     // %
	TokenLt          // <
	TokenGt          // >
	TokenLe          // <=
	TokenGe          // >=
	TokenEq          // ==
	TokenNe          // !=
	TokenNot         // !
	TokenAmpersand   // &

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenComma     // ,
	TokenSemicolon // ;
	TokenEllipsis  // ...

	numTokenTypes
)

// tokenInfo holds the dump tag and display text of a token type
type tokenInfo struct {
	name string
	text string
}

var tokenTable = [numTokenTypes]tokenInfo{
	TokenEOF:         {"EOF", "end of input"},
	TokenIdent:       {"ID", "identifier"},
	TokenNum:         {"NUM", "integer constant"},
	TokenFNum:        {"FNUM", "floating constant"},
	TokenChar_:       {"CHARACTER", "character constant"},
	TokenString:      {"STRING", "string literal"},
	TokenInt:         {"INT", "int"},
	TokenChar:        {"CHAR", "char"},
	TokenDouble:      {"DOUBLE", "double"},
	TokenVoid:        {"VOID", "void"},
	TokenIf:          {"IF", "if"},
	TokenElse:        {"ELSE", "else"},
	TokenWhile:       {"WHILE", "while"},
	TokenFor:         {"FOR", "for"},
	TokenReturn:      {"RETURN", "return"},
	TokenBreak:       {"BREAK", "break"},
	TokenContinue:    {"CONTINUE", "continue"},
	TokenStatic:      {"STATIC", "static"},
	TokenExtern:      {"EXTERN", "extern"},
	TokenAssign:      {"ASSIGN", "="},
	TokenPlusAssign:  {"EQ_PLUS", "+="},
	TokenMinusAssign: {"EQ_MINUS", "-="},
	TokenPlus:        {"PLUS", "+"},
	TokenMinus:       {"MINUS", "-"},
	TokenStar:        {"TIMES", "*"},
	TokenSlash:       {"DIV", "/"},
	TokenPercent:     {"MOD", "%"},
	TokenLt:          {"LT", "<"},
	TokenGt:          {"GT", ">"},
	TokenLe:          {"NGT", "<="},
	TokenGe:          {"NLT", ">="},
	TokenEq:          {"EQ", "=="},
	TokenNe:          {"NEQ", "!="},
	TokenNot:         {"NOT", "!"},
	TokenAmpersand:   {"AMPERSAND", "&"},
	TokenLParen:      {"LPARAN", "("},
	TokenRParen:      {"RPARAN", ")"},
	TokenLBrace:      {"LBRACE", "{"},
	TokenRBrace:      {"RBRACE", "}"},
	TokenLBracket:    {"LSQUARE", "["},
	TokenRBracket:    {"RSQUARE", "]"},
	TokenComma:       {"COMMA", ","},
	TokenSemicolon:   {"SEMI", ";"},
	TokenEllipsis:    {"ELLIPSIS", "..."},
}

func (t TokenType) String() string {
	if t >= 0 && t < numTokenTypes {
		return tokenTable[t].text
	}
	return "UNKNOWN"
}

// Name returns the upper-case tag used in token dumps and grammar rules
func (t TokenType) Name() string {
	if t >= 0 && t < numTokenTypes {
		return tokenTable[t].name
	}
	return "UNKNOWN"
}

// TokenTypes returns every token type except EOF, in declaration order
func TokenTypes() []TokenType {
	types := make([]TokenType, 0, numTokenTypes-1)
	for t := TokenIdent; t < numTokenTypes; t++ {
		types = append(types, t)
	}
	return types
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Dump formats the token as (KIND,'VALUE',LINE)
func (t Token) Dump() string {
	return fmt.Sprintf("(%s,'%s',%d)", t.Type.Name(), t.Literal, t.Line)
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return t.Type.String()
	case TokenIdent, TokenNum, TokenFNum, TokenChar_, TokenString:
		return t.Literal
	}
	return "'" + t.Literal + "'"
}

// keywords maps reserved words to token types. Read-only after init.
var keywords = map[string]TokenType{
	"int":      TokenInt,
	"char":     TokenChar,
	"double":   TokenDouble,
	"void":     TokenVoid,
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"for":      TokenFor,
	"return":   TokenReturn,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"static":   TokenStatic,
	"extern":   TokenExtern,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}
