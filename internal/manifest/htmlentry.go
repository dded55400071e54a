package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
)

// EntryScript parses the project's index.html and returns the src of the first
// module script tag. Front-end build engines treat index.html as the dependency
// graph root, so this is the launcher's best signal for the project entry point.
func EntryScript(projectRoot string) (string, error) {
	path := filepath.Join(projectRoot, "index.html")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening index.html: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parsing index.html: %w", err)
	}

	if src := findModuleScript(doc); src != "" {
		return src, nil
	}
	return "", fmt.Errorf("index.html has no module script tag")
}

func findModuleScript(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "script" {
		var src string
		isModule := false
		for _, attr := range n.Attr {
			switch attr.Key {
			case "type":
				isModule = attr.Val == "module"
			case "src":
				src = attr.Val
			}
		}
		if isModule && src != "" {
			return src
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src := findModuleScript(c); src != "" {
			return src
		}
	}
	return ""
}
