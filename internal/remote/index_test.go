package remote

import (
	"context"
	"testing"

	"github.com/hyperengineering/searchbridge/internal/catalog"
)

type recordingClient struct {
	endpoint, name string
	err            error
}

func (c *recordingClient) DeleteIndex(ctx context.Context, endpoint, name string) error {
	c.endpoint, c.name = endpoint, name
	return c.err
}

func TestForIndex(t *testing.T) {
	md := &catalog.IndexMetadata{
		OID:    42,
		Schema: "public",
		Table:  "products",
		Index:  "idxproducts",
	}

	t.Run("default endpoint", func(t *testing.T) {
		idx := ForIndex("shop", md, "http://localhost:9200/")
		if idx.Endpoint != "http://localhost:9200" {
			t.Errorf("Endpoint = %q", idx.Endpoint)
		}
		if idx.Name != "shop.public.products.idxproducts-42" {
			t.Errorf("Name = %q", idx.Name)
		}
		if idx.URL() != "http://localhost:9200/shop.public.products.idxproducts-42" {
			t.Errorf("URL() = %q", idx.URL())
		}
	})

	t.Run("url option wins", func(t *testing.T) {
		withURL := *md
		withURL.Options = map[string]string{URLOption: "https://es.internal:9243"}
		idx := ForIndex("shop", &withURL, "http://localhost:9200")
		if idx.Endpoint != "https://es.internal:9243" {
			t.Errorf("Endpoint = %q", idx.Endpoint)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		if ForIndex("shop", md, "x") != ForIndex("shop", md, "x") {
			t.Error("ForIndex is not deterministic")
		}
	})
}

func TestIndex_Delete(t *testing.T) {
	c := &recordingClient{}
	idx := Index{Endpoint: "http://es:9200", Name: "a.b.c.d-1"}

	if err := idx.Delete(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if c.endpoint != "http://es:9200" || c.name != "a.b.c.d-1" {
		t.Errorf("client got (%q, %q)", c.endpoint, c.name)
	}

	if err := (Index{Name: "x"}).Delete(context.Background(), c); err == nil {
		t.Error("Delete() without endpoint = nil, want error")
	}
}
