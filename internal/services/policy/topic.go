package policy

import (
	"fmt"
	"strings"
)

// TopicMatches reports whether an MQTT-style topic matches a pattern.
//
// Pattern segments:
//   - "+" matches exactly one segment of any content
//   - "#" as the final segment matches its own position and everything after
//     it, including nothing ("a/b/#" matches both "a/b" and "a/b/c/d")
//   - any other segment must equal the topic segment exactly
//
// A "#" in a non-terminal position never matches; ValidateTopicPattern
// rejects such patterns at rule load time.
func TopicMatches(pattern, topic string) bool {
	if pattern == "#" {
		return true
	}
	pp := strings.Split(pattern, "/")
	tp := strings.Split(topic, "/")

	for i, seg := range pp {
		if seg == "#" {
			// Only valid as the final pattern segment.
			return i == len(pp)-1
		}
		if i >= len(tp) {
			// Topic ran out; only a trailing "#" one segment back could
			// have matched, handled above.
			return false
		}
		if seg == "+" {
			continue
		}
		if seg != tp[i] {
			return false
		}
	}
	return len(pp) == len(tp)
}

// ValidateTopicPattern rejects malformed topic patterns: empty patterns and
// "#" anywhere but the final segment.
func ValidateTopicPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty topic pattern")
	}
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if seg == "#" && i != len(segments)-1 {
			return fmt.Errorf("pattern %q: multi-level wildcard # must be the final segment", pattern)
		}
	}
	return nil
}
