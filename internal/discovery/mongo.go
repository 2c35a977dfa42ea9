package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// Mongo implements Discoverer for MongoDB collections that carry a
// $jsonSchema validator. Collections without one have no columns.
type Mongo struct {
	cfg    *config.SourceConfig
	client *mongo.Client
}

// NewMongo creates a new MongoDB discoverer.
func NewMongo(cfg *config.SourceConfig) (*Mongo, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb source needs a database")
	}
	return &Mongo{cfg: cfg}, nil
}

// URI returns the connection string, built from host settings when no uri is
// configured.
func (m *Mongo) URI() string {
	if m.cfg.URI != "" {
		return m.cfg.URI
	}
	port := m.cfg.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(m.cfg.Host, strconv.Itoa(port))}
	if m.cfg.Username != "" {
		u.User = url.UserPassword(m.cfg.Username, m.cfg.Password)
	}
	if m.cfg.SSL {
		u.RawQuery = "tls=true"
	}
	return u.String()
}

func (m *Mongo) Connect(ctx context.Context) error {
	client, err := mongo.Connect(options.Client().ApplyURI(m.URI()))
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("pinging MongoDB: %w", err)
	}
	m.client = client
	return nil
}

// Columns reads the collection's $jsonSchema validator.
func (m *Mongo) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if m.client == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	cur, err := m.client.Database(m.cfg.Database).ListCollections(ctx, bson.D{{Key: "name", Value: table}})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var spec struct {
			Options struct {
				Validator bson.D `bson:"validator"`
			} `bson:"options"`
		}
		if err := cur.Decode(&spec); err != nil {
			return nil, fmt.Errorf("decoding collection spec: %w", err)
		}
		if js, ok := lookupDoc(spec.Options.Validator, "$jsonSchema"); ok {
			return ColumnsFromJSONSchema(js), nil
		}
	}
	return nil, cur.Err()
}

func (m *Mongo) Close() error {
	if m.client != nil {
		err := m.client.Disconnect(context.Background())
		m.client = nil
		return err
	}
	return nil
}

func (m *Mongo) describe() schema.Schema {
	return schema.Schema{DatabaseType: "mongodb", Host: m.cfg.Host, Database: m.cfg.Database}
}

// ColumnsFromJSONSchema converts top-level $jsonSchema properties to columns
// in document order. The first non-null bsonType (or JSON type) is the
// storage type. A property is nullable when it is not required or when null
// is one of its types.
func ColumnsFromJSONSchema(js bson.D) []schema.Column {
	required := make(map[string]bool)
	if req, ok := lookup(js, "required"); ok {
		for _, name := range stringList(req) {
			required[name] = true
		}
	}

	props, _ := lookupDoc(js, "properties")
	cols := make([]schema.Column, 0, len(props))
	for _, p := range props {
		def, _ := p.Value.(bson.D)

		types, ok := lookup(def, "bsonType")
		if !ok {
			types, _ = lookup(def, "type")
		}

		col := schema.Column{Name: p.Key, Nullable: !required[p.Key], DataType: "mixed"}
		first := true
		for _, t := range stringList(types) {
			if t == "null" {
				col.Nullable = true
				continue
			}
			if first {
				col.DataType = t
				first = false
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func lookupDoc(d bson.D, key string) (bson.D, bool) {
	v, ok := lookup(d, key)
	if !ok {
		return nil, false
	}
	doc, ok := v.(bson.D)
	return doc, ok
}

// stringList accepts a single string or an array of strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case bson.A:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []any:
		return stringList(bson.A(t))
	}
	return nil
}

var _ Discoverer = (*Mongo)(nil)
