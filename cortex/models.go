package cortex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultModelsURL documents Cortex model availability per region.
const DefaultModelsURL = "https://docs.snowflake.com/en/user-guide/snowflake-cortex/cortex-llm-rest-api#model-availability"

const (
	regionStatement    = "SELECT CURRENT_REGION()"
	modelsSectionID    = "model-availability"
	modelsSectionTitle = "Model availability"
)

var (
	// ErrNoModelSection is returned when the page has no model availability section.
	ErrNoModelSection = errors.New("failed to retrieve model availability from the docs")
	// ErrNoModelTable is returned when the section holds no table.
	ErrNoModelTable = errors.New("no model availability table found")
)

// ModelsResult lists the Complete models together with the account region.
type ModelsResult struct {
	CurrentRegion     string              `json:"current_region"`
	ModelAvailability []map[string]string `json:"model_availability"`
}

// Models reads the model availability table from URL and looks up the
// account region through executor.
func (c *Client) Models(ctx context.Context, URL string, executor Executor) (*ModelsResult, error) {
	if URL == "" {
		URL = DefaultModelsURL
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("url", URL).Msg("cortex models request")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve the page %s: %w", URL, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to retrieve the page %s with %d", URL, response.StatusCode)
	}
	models, err := ParseModels(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w, please visit %s", err, URL)
	}
	region, err := Region(ctx, executor)
	if err != nil {
		return nil, err
	}
	return &ModelsResult{CurrentRegion: region, ModelAvailability: models}, nil
}

// Region returns the value of CURRENT_REGION() for the session account.
func Region(ctx context.Context, executor Executor) (string, error) {
	if executor == nil {
		return "", fmt.Errorf("no session to look up the current region")
	}
	rows, err := executor.Fetch(ctx, regionStatement)
	if err != nil {
		return "", fmt.Errorf("failed to look up the current region: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("failed to look up the current region: no rows")
	}
	var region string
	for _, value := range rows[0] {
		if value != nil {
			region = fmt.Sprint(value)
		}
	}
	return region, nil
}

// ParseModels extracts the first table of the model availability section,
// keying each row by the table headers.
func ParseModels(r io.Reader) ([]map[string]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	section := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == modelsSectionID
	})
	if section == nil {
		if title := findNode(doc, func(n *html.Node) bool {
			return n.Type == html.TextNode && strings.TrimSpace(n.Data) == modelsSectionTitle
		}); title != nil {
			section = ancestor(title, atom.Section)
		}
	}
	if section == nil {
		return nil, ErrNoModelSection
	}
	table := findNode(section, isElement(atom.Table))
	if table == nil {
		return nil, ErrNoModelTable
	}
	var headers []string
	for _, th := range findAll(table, isElement(atom.Th)) {
		headers = append(headers, text(th))
	}
	var ret = make([]map[string]string, 0)
	rows := findAll(table, isElement(atom.Tr))
	for i, tr := range rows {
		if i == 0 {
			continue
		}
		var cells []*html.Node
		for child := tr.FirstChild; child != nil; child = child.NextSibling {
			if child.DataAtom == atom.Td || child.DataAtom == atom.Th {
				cells = append(cells, child)
			}
		}
		if len(cells) == 0 {
			continue
		}
		row := map[string]string{}
		for j, cell := range cells {
			if j < len(headers) {
				row[headers[j]] = text(cell)
			}
		}
		ret = append(ret, row)
	}
	return ret, nil
}

func isElement(a atom.Atom) func(n *html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func findNode(root *html.Node, match func(n *html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(root *html.Node, match func(n *html.Node) bool) []*html.Node {
	var ret []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			ret = append(ret, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return ret
}

func ancestor(n *html.Node, a atom.Atom) *html.Node {
	for parent := n.Parent; parent != nil; parent = parent.Parent {
		if parent.Type == html.ElementNode && parent.DataAtom == a {
			return parent
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, candidate := range n.Attr {
		if candidate.Key == key {
			return candidate.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var builder strings.Builder
	for _, node := range findAll(n, func(n *html.Node) bool { return n.Type == html.TextNode }) {
		builder.WriteString(node.Data)
	}
	return strings.TrimSpace(builder.String())
}
