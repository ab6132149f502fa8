package fuzzy

import "testing"

// TestProcess verifies normalization of punctuation, case and non-ASCII input.
func TestProcess(t *testing.T) {
	tests := map[string]string{
		"Attention Is All You Need.": "attention is all you need",
		"  Doe, Jane ":               "doe  jane",
		"Müller":                     "mller",
		"snake_case":                 "snake_case",
		"!!!":                        "",
	}
	for in, want := range tests {
		if got := Process(in); got != want {
			t.Errorf("Process(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRatio verifies the scaled sequence similarity.
func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"this is a test", "this is a test!", 97},
		{"doe", "doe j", 75},
		{"", "", 100},
		{"", "abc", 0},
		{"abc", "abc", 100},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestTokenSetRatio checks scores against known values for titles and names.
func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"J. Doe", "Jane Doe", 77},
		{"Jane Doe", "Doe, Jane", 100},
		{"John Smith", "Jon Smith", 95},
		{"Jane Doe", "John Smith", 22},
		{"Yoshua Bengio", "Y. Bengio", 86},
		{"Geoffrey Hinton", "Geoffrey E. Hinton", 100},
		{"Müller", "Muller", 91},
		{"Attention Is All You Need", "Attention is all you need.", 100},
		{"Deep Residual Learning for Image Recognition", "Deep Residual Learning for Image Recognitions", 99},
		{"A Survey of Graph Neural Networks", "A Survey on Graph Neural Networks", 97},
		{"new york mets vs atlanta braves", "atlanta braves vs new york mets", 100},
		{"Learning to Rank", "Learning to Rank with Gradients", 100},
		{"", "Jane Doe", 0},
		{"!!!", "Jane Doe", 0},
	}
	for _, tt := range tests {
		if got := TokenSetRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("TokenSetRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := TokenSetRatio(tt.b, tt.a); got != tt.want {
			t.Errorf("TokenSetRatio(%q, %q) = %d, want %d (reversed)", tt.b, tt.a, got, tt.want)
		}
	}
}

func BenchmarkTokenSetRatio(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TokenSetRatio("Deep Residual Learning for Image Recognition", "Residual learning for image recognition, deep")
	}
}
