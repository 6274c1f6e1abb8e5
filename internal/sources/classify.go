// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"net/url"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// hostRule maps host substrings to a classification. Rules are checked in
// order; the first match wins.
type hostRule struct {
	needles     []string
	typ         types.SourceType
	reliability types.Reliability
}

var hostRules = []hostRule{
	{
		needles: []string{".edu", ".gov", "scholar", "research", "academic",
			"arxiv", "pubmed", "ncbi", "doi.org", "hal.science", "cairn", "persee"},
		typ:         types.SourceAcademic,
		reliability: types.ReliabilityHigh,
	},
	{
		needles:     []string{"news", "times", "post", "journal", "reuters", "afp"},
		typ:         types.SourcePress,
		reliability: types.ReliabilityGood,
	},
	{
		needles:     []string{"wikipedia"},
		typ:         types.SourceEncyclopedia,
		reliability: types.ReliabilityGood,
	},
	{
		needles:     []string{"blog", "medium", "wordpress", "blogger"},
		typ:         types.SourceBlog,
		reliability: types.ReliabilityMedium,
	},
}

// articleDepth is the path depth from which an unmatched URL counts as an article.
const articleDepth = 3

// Classify infers a source's type and reliability from its URL host. A
// host containing .edu or .gov is always rated élevée. URLs that cannot be
// parsed are non-classées.
func Classify(rawURL string) (types.SourceType, types.Reliability) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return types.SourceUnclassified, types.ReliabilityMedium
	}
	host := strings.ToLower(u.Hostname())

	typ, rel := types.SourceWeb, types.ReliabilityMedium
	matched := false
	for _, rule := range hostRules {
		if containsAny(host, rule.needles) {
			typ, rel = rule.typ, rule.reliability
			matched = true
			break
		}
	}
	if !matched && pathDepth(u.Path) >= articleDepth {
		typ = types.SourceArticle
	}
	if containsAny(host, []string{".edu", ".gov"}) {
		rel = types.ReliabilityHigh
	}
	return typ, rel
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func pathDepth(p string) int {
	n := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}
