package anthropic

// BuildCachedSystemBlocks wraps a system prompt with a cache breakpoint so
// repeated vision calls in a batch reuse the prompt prefix.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{{Text: text, CacheControl: &CacheControl{TTL: "1h"}}}
}
