package catalogindex

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nmthanh/warehouse-vision/internal/match"
	"github.com/nmthanh/warehouse-vision/internal/textutil"
)

// document is the shape stored in the search collection.
type document struct {
	ExternalID     string `bson:"external_id"`
	Name           string `bson:"name"`
	NormalizedName string `bson:"normalized_name"`
	SKU            string `bson:"sku"`
	SearchText     string `bson:"search_text"`
}

// MongoIndex implements match.CatalogIndex on a MongoDB text index. It is an
// eventually-consistent read cache over the product catalog: writes that
// keep it in sync are fire-and-forget relative to the primary catalog write,
// and it is never a source of truth.
type MongoIndex struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    zerolog.Logger
}

// Connect opens a client against the given collection and ensures the text
// index over (name, sku) exists. Callers own the lifecycle and must Close.
func Connect(ctx context.Context, uri, database, collection string, log zerolog.Logger) (*MongoIndex, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("catalogindex.Connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("catalogindex.Connect: ping: %w", err)
	}

	idx := &MongoIndex{
		client: client,
		coll:   client.Database(database).Collection(collection),
		log:    log,
	}
	if err := idx.ensureTextIndex(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("catalogindex.Connect: ensure index: %w", err)
	}
	return idx, nil
}

// Close releases the underlying client.
func (m *MongoIndex) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoIndex) ensureTextIndex(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "sku", Value: "text"},
		},
	})
	return err
}

// Search implements match.CatalogIndex with a ranked $text query.
func (m *MongoIndex) Search(ctx context.Context, query string, limit int64) ([]match.Candidate, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetLimit(limit)

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("MongoIndex.Search: %w", err)
	}
	return decodeCandidates(ctx, cur)
}

// SearchFragment implements match.CatalogIndex with a case-insensitive
// literal scan over search_text. It backs up the $text query when OCR noise
// defeats the ranked search.
func (m *MongoIndex) SearchFragment(ctx context.Context, fragment string, limit int64) ([]match.Candidate, error) {
	filter := bson.M{"search_text": bson.M{"$regex": primitive.Regex{
		Pattern: regexp.QuoteMeta(fragment),
		Options: "i",
	}}}

	cur, err := m.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("MongoIndex.SearchFragment: %w", err)
	}
	return decodeCandidates(ctx, cur)
}

// Upsert mirrors one catalog entry into the index, keyed by external ID.
func (m *MongoIndex) Upsert(ctx context.Context, c match.Candidate) error {
	doc := toDocument(c)
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"external_id": doc.ExternalID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("MongoIndex.Upsert: %w", err)
	}
	return nil
}

// Resync replaces the entire index contents with the given catalog snapshot
// and re-creates the text index. Used at bootstrap or after bulk catalog
// changes.
func (m *MongoIndex) Resync(ctx context.Context, entries []match.Candidate) error {
	if _, err := m.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("MongoIndex.Resync: clearing: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(entries))
	for _, c := range entries {
		docs = append(docs, toDocument(c))
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("MongoIndex.Resync: inserting %d entries: %w", len(entries), err)
	}
	if err := m.ensureTextIndex(ctx); err != nil {
		return fmt.Errorf("MongoIndex.Resync: ensure index: %w", err)
	}
	m.log.Info().Int("entries", len(entries)).Msg("catalog index resynced")
	return nil
}

func toDocument(c match.Candidate) document {
	doc := document{
		ExternalID:     c.ExternalID,
		Name:           c.Name,
		NormalizedName: c.NormalizedName,
		SKU:            c.SKU,
		SearchText:     c.Name + " " + c.SKU,
	}
	if doc.NormalizedName == "" {
		doc.NormalizedName = textutil.NormalizeTones(c.Name)
	}
	return doc
}

func decodeCandidates(ctx context.Context, cur *mongo.Cursor) ([]match.Candidate, error) {
	defer cur.Close(ctx)

	var out []match.Candidate
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding candidate: %w", err)
		}
		out = append(out, match.Candidate{
			ExternalID:     doc.ExternalID,
			Name:           doc.Name,
			NormalizedName: doc.NormalizedName,
			SKU:            doc.SKU,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return out, nil
}

var _ match.CatalogIndex = (*MongoIndex)(nil)
