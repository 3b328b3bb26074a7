package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ManifestFile is the library index expected under a library base URL.
const ManifestFile = "instrumentLibrary.json"

// FetchLibrary reads the instrument library manifest and returns display
// name to absolute URL.
func FetchLibrary(ctx context.Context, baseURL string) (map[string]string, error) {
	data, err := fetch(ctx, strings.TrimRight(baseURL, "/")+"/"+ManifestFile)
	if err != nil {
		return nil, err
	}
	var manifest map[string]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing instrument manifest: %w", err)
	}
	library := make(map[string]string, len(manifest))
	for name, rel := range manifest {
		library[name] = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(rel, "/")
	}
	return library, nil
}

// Names lists a library's instrument names in stable order.
func Names(library map[string]string) []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchContainer downloads and parses an instrument container.
func FetchContainer(ctx context.Context, url string) (*Container, error) {
	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
