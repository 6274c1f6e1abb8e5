// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/pkg/types"
)

func fixedExtractor() *Extractor {
	return &Extractor{
		Intn: func(int) int { return 0 },
		Now:  func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestExtract_StructuredBlocks(t *testing.T) {
	text := "Source: https://arxiv.org/abs/1234\nTitre: Foo\nRésumé: Bar\n" +
		"---\n" +
		"Source: https://arxiv.org/abs/5678\nTitre: Foo\nRésumé: Bar\n"

	got := Extract(text)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, types.SourceAcademic, s.Type)
		assert.Equal(t, types.ReliabilityHigh, s.Reliability)
		assert.Equal(t, "Foo", s.Title)
		assert.Equal(t, "Bar", s.Summary)
		assert.False(t, s.Simulated)
	}
	assert.Equal(t, "https://arxiv.org/abs/1234", got[0].URL)
	assert.Equal(t, "https://arxiv.org/abs/5678", got[1].URL)
}

func TestExtract_StructuredBlocksSameURL(t *testing.T) {
	block := "Source: https://arxiv.org/abs/1234\nTitre: Foo\nRésumé: Bar\n"
	got := Extract(block + "---\n" + block)

	require.Len(t, got, 1)
	assert.Equal(t, "https://arxiv.org/abs/1234", got[0].URL)
	assert.Equal(t, types.SourceAcademic, got[0].Type)
	assert.Equal(t, types.ReliabilityHigh, got[0].Reliability)
	assert.Equal(t, "Foo", got[0].Title)
	assert.False(t, got[0].Simulated)
}

func TestExtract_ParenthesesInURL(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"balanced", "Voir https://en.wikipedia.org/wiki/Python_(programming_language) pour l'historique.",
			"https://en.wikipedia.org/wiki/Python_(programming_language)"},
		{"balanced then period", "Voir https://en.wikipedia.org/wiki/Python_(programming_language).",
			"https://en.wikipedia.org/wiki/Python_(programming_language)"},
		{"wrapped", "(voir https://www.insee.fr/fr/statistiques/1234567)",
			"https://www.insee.fr/fr/statistiques/1234567"},
		{"wrapped balanced", "(https://fr.wikipedia.org/wiki/Mars_(planète))",
			"https://fr.wikipedia.org/wiki/Mars_(planète)"},
		{"markdown link", "[INSEE](https://www.insee.fr/fr/accueil)",
			"https://www.insee.fr/fr/accueil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].URL)
		})
	}
}

func TestMapURLs(t *testing.T) {
	got := MapURLs("a https://x.fr/1 et (https://y.fr/2) b", strings.ToUpper)
	assert.Equal(t, "a HTTPS://X.FR/1 et (HTTPS://Y.FR/2) b", got)
}

func TestExtract_CanonicalResearchFormat(t *testing.T) {
	text := "[Synthèse] Résumé général.\n\n" +
		"[Source 1] Le marché du livre\nURL: https://www.lemonde.fr/economie/article/2024-03-02/livre.html\nRésumé: Ventes en hausse.\n\n" +
		"[Source 2] Histoire du livre\nURL: https://fr.wikipedia.org/wiki/Livre\nRésumé: Article encyclopédique.\n\n"

	got := Extract(text)
	require.Len(t, got, 2)

	assert.Equal(t, "Le marché du livre", got[0].Title)
	assert.Equal(t, types.SourceArticle, got[0].Type)
	assert.Equal(t, "2024-03-02", got[0].Date)
	assert.Equal(t, "Ventes en hausse.", got[0].Summary)

	assert.Equal(t, "Histoire du livre", got[1].Title)
	assert.Equal(t, types.SourceEncyclopedia, got[1].Type)
	assert.Equal(t, types.ReliabilityGood, got[1].Reliability)
}

func TestExtract_OtherLabels(t *testing.T) {
	text := "[source] https://blog.example-startup.io/post/1\nTitle: Retour d'expérience\n| Un témoignage de terrain |\n\n" +
		"- https://www.reuters.com/world/\n- Dépêche du jour\nDescription: Brève.\n"

	got := Extract(text)
	require.Len(t, got, 2)
	assert.Equal(t, "Retour d'expérience", got[0].Title)
	assert.Equal(t, "Un témoignage de terrain", got[0].Summary)
	assert.Equal(t, types.SourceBlog, got[0].Type)

	assert.Equal(t, "https://www.reuters.com/world/", got[1].URL)
	assert.Equal(t, "Dépêche du jour", got[1].Title)
	assert.Equal(t, "Brève.", got[1].Summary)
}

func TestExtract_InlineURLsAfterStructured(t *testing.T) {
	text := "Source: https://www.nytimes.com/2023/05/01/tech/ai.html\nTitre: IA\n\n" +
		"Voir aussi (https://www.insee.fr/fr/statistiques/1234567) et https://www.nytimes.com/2023/05/01/tech/ai.html, " +
		"ou encore https://research.google/pubs/123."

	got := Extract(text)
	require.Len(t, got, 3)
	assert.Equal(t, "https://www.nytimes.com/2023/05/01/tech/ai.html", got[0].URL)
	assert.Equal(t, "2023", got[0].Date)
	assert.Equal(t, "https://www.insee.fr/fr/statistiques/1234567", got[1].URL)
	assert.Equal(t, types.SourceArticle, got[1].Type)
	assert.Equal(t, "https://research.google/pubs/123", got[2].URL)
	assert.Equal(t, types.SourceAcademic, got[2].Type)
	assert.Equal(t, "123", got[2].Title)
}

func TestExtract_ReservedDomainsNeverReal(t *testing.T) {
	text := "Source: https://example.com/2026/x\nTitre: Faux\n\n" +
		"https://www.example.org/a https://sub.example.net/b https://docs.example/c " +
		"https://www.lemonde.fr/a"

	got := Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "https://www.lemonde.fr/a", got[0].URL)
	for _, s := range got {
		u, err := url.Parse(s.URL)
		require.NoError(t, err)
		assert.False(t, IsReservedHost(u.Hostname()))
	}
}

func TestExtract_RealURLsNeverSimulated(t *testing.T) {
	got := Extract("Lire https://www.cnrs.fr/fr/presse pour en savoir plus.")
	require.Len(t, got, 1)
	assert.False(t, got[0].Simulated)
}

func TestExtract_Pure(t *testing.T) {
	text := "Source: https://hal.science/hal-0001\nTitre: Étude\n\nhttps://medium.com/@a/b"
	assert.Equal(t, Extract(text), Extract(text))
}

func TestExtract_Synthesis(t *testing.T) {
	text := "Les océans absorbent une grande part du carbone émis. " +
		"La température moyenne de surface augmente chaque décennie. " +
		"Les récifs coralliens subissent des épisodes de blanchiment massifs."

	got := fixedExtractor().Extract(text)
	require.GreaterOrEqual(t, len(got), 3)
	require.LessOrEqual(t, len(got), 5)

	hosts := map[string]bool{}
	for _, d := range Domains {
		hosts[d.Host] = true
	}
	for _, s := range got {
		assert.True(t, s.Simulated)
		u, err := url.Parse(s.URL)
		require.NoError(t, err)
		assert.True(t, hosts[u.Host], u.Host)
		assert.True(t, strings.HasPrefix(u.Path, "/2026/"), u.Path)
		assert.Equal(t, "2026", s.Date)
		assert.Equal(t, Domains[0].Type, s.Type)
	}
	assert.Equal(t, "Les océans absorbent une grande part du carbone émis", got[0].Title)
	assert.Equal(t, "https://www.lemonde.fr/2026/les-oceans-absorbent-une-grande-part-du-carbone-emis", got[0].URL)
}

func TestExtract_SynthesisWindowsAndGeneric(t *testing.T) {
	e := fixedExtractor()

	words := strings.Repeat("mot ", 24)
	got := e.Extract(words)
	require.Len(t, got, 3)
	assert.Equal(t, "Mot mot mot mot mot mot mot mot", got[0].Title)

	got = e.Extract("trop court")
	require.Len(t, got, 3)
	assert.Equal(t, genericTitles[0], got[0].Title)
}

func TestExtract_EmptyInput(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("  \n\t "))
	assert.NotNil(t, Extract(""))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url string
		typ types.SourceType
		rel types.Reliability
	}{
		{"https://web.mit.edu/news/x", types.SourceAcademic, types.ReliabilityHigh},
		{"https://www.data.gov/dataset", types.SourceAcademic, types.ReliabilityHigh},
		{"https://scholar.google.com/citations", types.SourceAcademic, types.ReliabilityHigh},
		{"https://arxiv.org/abs/2401.00001", types.SourceAcademic, types.ReliabilityHigh},
		{"https://www.washingtonpost.com/a", types.SourcePress, types.ReliabilityGood},
		{"https://www.reuters.com/a", types.SourcePress, types.ReliabilityGood},
		{"https://fr.wikipedia.org/wiki/Paris", types.SourceEncyclopedia, types.ReliabilityGood},
		{"https://medium.com/@x/y", types.SourceBlog, types.ReliabilityMedium},
		{"https://monsite.wordpress.com/", types.SourceBlog, types.ReliabilityMedium},
		{"https://www.acme.fr/", types.SourceWeb, types.ReliabilityMedium},
		{"https://www.acme.fr/a/b/c", types.SourceArticle, types.ReliabilityMedium},
		{"not a url", types.SourceUnclassified, types.ReliabilityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			typ, rel := Classify(tt.url)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.rel, rel)
		})
	}
}

func TestClassify_EduAlwaysHigh(t *testing.T) {
	for _, u := range []string{
		"https://news.stanford.edu/story",
		"https://blog.cs.cmu.edu/post",
		"https://wikipedia.harvard.edu/x",
	} {
		_, rel := Classify(u)
		assert.Equal(t, types.ReliabilityHigh, rel, u)
	}
}

func TestDateFromURL(t *testing.T) {
	assert.Equal(t, "2024-01-31", DateFromURL("https://a.fr/2023/x-2024-01-31"))
	assert.Equal(t, "2019", DateFromURL("https://a.fr/archives/2019/x"))
	assert.Empty(t, DateFromURL("https://a.fr/abs/1234"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "energie-solaire", Slugify("Énergie solaire"))
	assert.Equal(t, "coeur-l-ia-en-2026", Slugify("  Cœur : l'IA en 2026 !"))
	assert.Empty(t, Slugify("!!!"))
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("abc ", 40))), maxSlugLen)
}

func TestIsReservedHost(t *testing.T) {
	assert.True(t, IsReservedHost("example.com"))
	assert.True(t, IsReservedHost("WWW.EXAMPLE.ORG"))
	assert.True(t, IsReservedHost("foo.example"))
	assert.False(t, IsReservedHost("example-startup.io"))
	assert.False(t, IsReservedHost("myexample.com"))
}
