package journal

// SplitMessage cuts text into chunks of at most max characters. A chunk
// ends after the last newline within the limit when that newline lies past
// half the limit, otherwise after the last such space, otherwise exactly at
// the limit. Concatenating the chunks yields text unchanged.
func SplitMessage(text string, max int) []string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return []string{text}
	}

	var chunks []string
	for len(r) > 0 {
		if len(r) <= max {
			chunks = append(chunks, string(r))
			break
		}

		splitAt := max
		if pos := lastIndex(r[:max], '\n'); pos > max/2 {
			splitAt = pos + 1
		} else if pos := lastIndex(r[:max], ' '); pos > max/2 {
			splitAt = pos + 1
		}

		chunks = append(chunks, string(r[:splitAt]))
		r = r[splitAt:]
	}
	return chunks
}

func lastIndex(r []rune, c rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == c {
			return i
		}
	}
	return -1
}
