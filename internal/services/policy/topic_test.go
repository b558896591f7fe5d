package policy

import "testing"

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		topic   string
		want    bool
	}{
		{"exact", "celine/dt/events", "celine/dt/events", true},
		{"exact mismatch", "celine/dt/events", "celine/dt/values", false},
		{"length mismatch", "celine/dt", "celine/dt/events", false},
		{"plus matches one segment", "celine/+/events", "celine/dt/events", true},
		{"plus matches any content", "celine/+/events", "celine/pipelines/events", true},
		{"plus does not span segments", "celine/+/events", "celine/dt/values/events", false},
		{"hash matches rest", "celine/dt/#", "celine/dt/events/pump-1", true},
		{"hash matches one level", "celine/dt/#", "celine/dt/events", true},
		{"hash matches parent level", "celine/dt/#", "celine/dt", true},
		{"hash alone matches everything", "#", "celine/dt/events", true},
		{"hash does not match foreign prefix", "celine/dt/#", "celine/pipelines/events", false},
		{"non-terminal hash never matches", "celine/#/events", "celine/dt/events", false},
		{"plus and hash combined", "celine/+/#", "celine/pipelines/runs/42/state", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicMatches(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("TopicMatches(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}

func TestValidateTopicPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"plain topic", "celine/dt/events", false},
		{"terminal hash", "celine/dt/#", false},
		{"bare hash", "#", false},
		{"single-level wildcards", "celine/+/+", false},
		{"non-terminal hash", "celine/#/events", true},
		{"empty pattern", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopicPattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopicPattern(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}
