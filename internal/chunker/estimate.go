package chunker

// CharsPerToken is the rough English-text ratio used by EstimateTokens.
const CharsPerToken = 4

// TokenEstimator approximates the number of model tokens in a text.
type TokenEstimator func(text string) int

// EstimateTokens approximates tokens as len(text)/CharsPerToken, rounded up.
func EstimateTokens(text string) int {
	return RatioEstimator(CharsPerToken)(text)
}

// RatioEstimator returns an estimator using a fixed chars-per-token ratio.
// Non-positive ratios fall back to CharsPerToken.
func RatioEstimator(charsPerToken int) TokenEstimator {
	if charsPerToken <= 0 {
		charsPerToken = CharsPerToken
	}
	return func(text string) int {
		return (len(text) + charsPerToken - 1) / charsPerToken
	}
}

// CharBudget converts a token budget into a byte budget for Plan.
func CharBudget(tokens, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = CharsPerToken
	}
	return tokens * charsPerToken
}
