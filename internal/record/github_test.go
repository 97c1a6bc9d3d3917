// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import "testing"

func TestParseGithubURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
		org     string
		repo    string
		tag     string
	}{
		{"repo with tree tag", "https://github.com/cldf-datasets/wals/tree/v2020", false, "cldf-datasets", "wals", "v2020"},
		{"repo without tag", "https://github.com/cldf-datasets/wals", false, "cldf-datasets", "wals", ""},
		{"www host", "https://www.github.com/org/repo/tree/v1.0", false, "org", "repo", "v1.0"},
		{"tree without tag segment", "https://github.com/org/repo/tree", false, "org", "repo", ""},
		{"non-tree path", "https://github.com/org/repo/releases/tag/v1.0", false, "org", "repo", ""},
		{"not github", "https://gitlab.com/org/repo", true, "", "", ""},
		{"org only", "https://github.com/org", true, "", "", ""},
		{"not a URL", "10.5281/zenodo.5173799", true, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGithubURL(tt.input)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ParseGithubURL(%q) = %+v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseGithubURL(%q) = nil, want repo", tt.input)
			}
			if got.Org != tt.org || got.Name != tt.repo || got.Tag != tt.tag {
				t.Errorf("ParseGithubURL(%q) = %+v, want {%s %s %s}", tt.input, got, tt.org, tt.repo, tt.tag)
			}
		})
	}
}
