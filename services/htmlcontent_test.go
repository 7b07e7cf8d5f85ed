package services

import (
	"strings"
	"testing"
)

func testRules() DomainRules {
	return DefaultDomainRules()
}

func TestProcessEmptyInput(t *testing.T) {
	p := NewHTMLProcessor(testRules())

	for _, raw := range []string{"", "   ", "\n\t"} {
		result := p.Process(raw)
		if result.CleanedHTML != "" {
			t.Errorf("Process(%q).CleanedHTML = %q, want empty", raw, result.CleanedHTML)
		}
		if result.ImageURLs == nil || len(result.ImageURLs) != 0 {
			t.Errorf("Process(%q).ImageURLs = %v, want empty non-nil slice", raw, result.ImageURLs)
		}
	}
}

func TestProcessCutsComparisonSection(t *testing.T) {
	markers := []struct {
		name   string
		marker string
	}{
		{"h2", `<h2>Confronto</h2>`},
		{"h3", `<h3 class="x">Confronto</h3>`},
		{"h2 strong", `<h2><strong>Confronto</strong></h2>`},
		{"h3 strong", `<h3> <strong> Confronto </strong> </h3>`},
		{"strong", `<strong>Confronto</strong>`},
		{"b", `<b>Confronto</b>`},
	}

	for _, tt := range markers {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<p>Descrizione del prodotto.</p>` +
				`<img src="https://images.senetic.com/keep-me.jpg">` +
				tt.marker +
				`<table><tr><td><img src="https://images.senetic.com/other-product.jpg"></td></tr></table>`

			result := NewHTMLProcessor(testRules()).Process(raw)

			if strings.Contains(result.CleanedHTML, "other-product") {
				t.Errorf("comparison content survived the cut: %q", result.CleanedHTML)
			}
			if !strings.Contains(result.CleanedHTML, "Descrizione del prodotto") {
				t.Errorf("pre-marker content lost: %q", result.CleanedHTML)
			}
			if len(result.ImageURLs) != 1 || result.ImageURLs[0] != "https://images.senetic.com/keep-me.jpg" {
				t.Errorf("ImageURLs = %v, want only the pre-marker image", result.ImageURLs)
			}
		})
	}
}

func TestProcessMarkerIsCaseSensitive(t *testing.T) {
	raw := `<p>Testo.</p><h2>confronto</h2><img src="https://images.senetic.com/still-here.jpg">`
	result := NewHTMLProcessor(testRules()).Process(raw)

	if len(result.ImageURLs) != 1 {
		t.Errorf("lower-case marker must not truncate, ImageURLs = %v", result.ImageURLs)
	}
}

func TestProcessDecodesEntitiesBeforeMatching(t *testing.T) {
	raw := `&lt;p&gt;Testo.&lt;/p&gt;&lt;h2&gt;Confronto&lt;/h2&gt;&lt;img src="https://images.senetic.com/x.jpg"&gt;`
	result := NewHTMLProcessor(testRules()).Process(raw)

	if len(result.ImageURLs) != 0 {
		t.Errorf("entity-encoded comparison section leaked images: %v", result.ImageURLs)
	}
	if strings.Contains(result.CleanedHTML, "Confronto") {
		t.Errorf("comparison heading survived: %q", result.CleanedHTML)
	}
}

func TestExtractImageURLs(t *testing.T) {
	raw := `<img src="https://images.senetic.com/a.jpg">` +
		`<img src="//download.senetic.com/b.png">` +
		`<img src="/media/c.gif">` +
		`<img src="https://evil.example.com/d.jpg">` +
		`<img src="data:image/png;base64,AAAA">` +
		`<img src="https://images.senetic.com/manual.pdf">` +
		`<img src="https://images.senetic.com/a.jpg">`

	result := NewHTMLProcessor(testRules()).Process(raw)

	want := []string{
		"https://images.senetic.com/a.jpg",
		"https://download.senetic.com/b.png",
		"https://www.senetic.it/media/c.gif",
	}
	if len(result.ImageURLs) != len(want) {
		t.Fatalf("ImageURLs = %v, want %v", result.ImageURLs, want)
	}
	for i, u := range want {
		if result.ImageURLs[i] != u {
			t.Errorf("ImageURLs[%d] = %q, want %q", i, result.ImageURLs[i], u)
		}
	}
}

func TestCleanedBodyHasNoMedia(t *testing.T) {
	raw := `<p>Intro</p>` +
		`<figure><img src="https://images.senetic.com/a.jpg"></figure>` +
		`<video controls><source src="https://download.senetic.com/demo.mp4"></video>` +
		`<a href="https://download.senetic.com/clip.mp4">Guarda il video</a>` +
		`<p>Vedi https://download.senetic.com/raw.mp4 per dettagli</p>` +
		`<br><br><br>` +
		`<p>Outro</p>`

	result := NewHTMLProcessor(testRules()).Process(raw)
	cleaned := result.CleanedHTML

	for _, banned := range []string{"<img", "<video", ".mp4", "<figure></figure>"} {
		if strings.Contains(cleaned, banned) {
			t.Errorf("cleaned body still contains %q: %q", banned, cleaned)
		}
	}
	if strings.Contains(cleaned, "<br><br>") {
		t.Errorf("br run not collapsed: %q", cleaned)
	}
	if !strings.Contains(cleaned, "Intro") || !strings.Contains(cleaned, "Outro") {
		t.Errorf("text content lost: %q", cleaned)
	}
	if result.Stats.VideosRemoved == 0 {
		t.Error("expected VideosRemoved > 0")
	}
}

func TestStripDanglingClose(t *testing.T) {
	// Supplier fragments often close a wrapper that was never opened in the
	// fragment itself.
	raw := `<p>Testo.</p></div>`
	result := NewHTMLProcessor(testRules()).Process(raw)

	if strings.HasSuffix(result.CleanedHTML, "</div>") {
		t.Errorf("dangling </div> not stripped: %q", result.CleanedHTML)
	}
	if !strings.Contains(result.CleanedHTML, "Testo.") {
		t.Errorf("content lost: %q", result.CleanedHTML)
	}
}
