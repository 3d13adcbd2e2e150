package llm

import (
	"errors"
	"testing"
)

func TestParseJSONObject(t *testing.T) {
	type result struct {
		Answer     string  `json:"answer"`
		Confidence float64 `json:"confidence"`
	}

	tests := []struct {
		name    string
		raw     string
		want    result
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"answer": "The sale price is $450,000.", "confidence": 0.9}`,
			want: result{Answer: "The sale price is $450,000.", Confidence: 0.9},
		},
		{
			name: "json code fence",
			raw:  "```json\n{\"answer\": \"yes\", \"confidence\": 0.5}\n```",
			want: result{Answer: "yes", Confidence: 0.5},
		},
		{
			name: "plain code fence",
			raw:  "```\n{\"answer\": \"yes\", \"confidence\": 0.5}\n```",
			want: result{Answer: "yes", Confidence: 0.5},
		},
		{
			name: "surrounding prose",
			raw:  "Here is the result:\n{\"answer\": \"yes\", \"confidence\": 1}\nHope this helps.",
			want: result{Answer: "yes", Confidence: 1},
		},
		{
			name: "unknown fields tolerated",
			raw:  `{"answer": "yes", "confidence": 0.2, "extra": [1, 2]}`,
			want: result{Answer: "yes", Confidence: 0.2},
		},
		{
			name: "nested braces",
			raw:  `{"answer": "see {note}", "confidence": 0.3}`,
			want: result{Answer: "see {note}", Confidence: 0.3},
		},
		{
			name:    "no object",
			raw:     "I could not determine the answer.",
			wantErr: true,
		},
		{
			name:    "truncated object",
			raw:     `{"answer": "yes", "confidence": `,
			wantErr: true,
		},
		{
			name:    "wrong field type",
			raw:     `{"answer": "yes", "confidence": "high"}`,
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got result
			err := ParseJSONObject(tt.raw, &got)

			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("ParseJSONObject() error = %v, want ErrMalformedResponse", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseJSONObject() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseJSONObject() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
