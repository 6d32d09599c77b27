package language

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Language
		minConf float64
	}{
		{
			name:    "plain english",
			text:    "I am a farmer, what schemes can help me with irrigation",
			want:    English,
			minConf: 0.75,
		},
		{
			name:    "plain hindi",
			text:    "मुझे सिंचाई के लिए कौन सी योजना मिल सकती है",
			want:    Hindi,
			minConf: 0.75,
		},
		{
			name:    "romanized hindi",
			text:    "mujhe yojana chahiye kya hai sarkari madad",
			want:    Hindi,
			minConf: 0.5,
		},
		{
			name: "code switched",
			text: "मेरा application status check करना है please बताइए जल्दी",
			want: Mixed,
		},
		{
			name: "too short",
			text: "ok",
			want: Mixed,
		},
		{
			name: "empty",
			text: "",
			want: Mixed,
		},
		{
			name: "digits only",
			text: "12345 678",
			want: Mixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			if got.Language != tt.want {
				t.Errorf("Detect(%q).Language = %q, want %q", tt.text, got.Language, tt.want)
			}
			if got.Confidence < tt.minConf {
				t.Errorf("Detect(%q).Confidence = %g, want >= %g", tt.text, got.Confidence, tt.minConf)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %g outside [0,1]", got.Confidence)
			}
		})
	}
}

func TestDetectDeterministic(t *testing.T) {
	text := "pani ki samasya hai मेरे गांव में"
	first := Detect(text)
	for i := 0; i < 10; i++ {
		if got := Detect(text); got != first {
			t.Fatalf("Detect not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestShortInputNeverFails(t *testing.T) {
	// Detection must never panic or error on degenerate input.
	for _, text := range []string{"", " ", "!!!", "अ", "a", "।"} {
		got := Detect(text)
		if !got.Language.Valid() {
			t.Errorf("Detect(%q) returned invalid language %q", text, got.Language)
		}
	}
}
