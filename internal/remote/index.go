package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperengineering/searchbridge/internal/catalog"
)

// URLOption is the index option naming the engine that hosts the index.
const URLOption = "url"

// Index addresses one remote index. It is a plain value with no reference
// back into the catalog, so it can be used after the catalog rows are gone.
type Index struct {
	Endpoint string
	Name     string
}

// ForIndex derives the remote index of a governed index.
// The name is "<database>.<schema>.<table>.<index>-<oid>"; the endpoint is
// the index's url option, or defaultURL when the option is unset.
func ForIndex(database string, md *catalog.IndexMetadata, defaultURL string) Index {
	endpoint := md.Options[URLOption]
	if endpoint == "" {
		endpoint = defaultURL
	}
	name := fmt.Sprintf("%s.%s.%s.%s-%d", database, md.Schema, md.Table, md.Index, md.OID)
	return Index{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Name:     strings.ToLower(name),
	}
}

// URL returns the full address of the index.
func (i Index) URL() string {
	return i.Endpoint + "/" + i.Name
}

// Delete removes the index from the remote engine.
func (i Index) Delete(ctx context.Context, c Client) error {
	if i.Endpoint == "" {
		return fmt.Errorf("delete %s: no remote endpoint", i.Name)
	}
	return c.DeleteIndex(ctx, i.Endpoint, i.Name)
}
