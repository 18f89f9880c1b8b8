package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insights/internal/catalog/domain"
	shareddomain "insights/internal/shared/domain"
)

// DefaultMongoCollection est le nom historique de la collection produits
const DefaultMongoCollection = "amazon-sales"

// MongoProductStore lit le catalogue depuis une collection MongoDB.
// Les documents sont décodés champ par champ: les nombres restent numériques,
// les chaînes restent du texte et la normalisation tranche ensuite.
type MongoProductStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoProductStore se connecte et vérifie la connexion
func NewMongoProductStore(ctx context.Context, uri, database, collection string) (*MongoProductStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoProductStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close ferme la connexion
func (s *MongoProductStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Find retourne les documents triés par _id
func (s *MongoProductStore) Find(ctx context.Context, f Filter) ([]domain.RawProduct, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Skip > 0 {
		opts.SetSkip(int64(f.Skip))
	}

	cursor, err := s.collection.Find(ctx, f.ToBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.RawProduct
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Distinct retourne les valeurs texte distinctes d'un champ
func (s *MongoProductStore) Distinct(ctx context.Context, field domain.Field) ([]string, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	values, err := s.collection.Distinct(ctx, string(field), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str := shareddomain.RawFrom(v).String(); str != "" {
			out = append(out, str)
		}
	}
	return out, nil
}

// Count compte les documents correspondant au filtre
func (s *MongoProductStore) Count(ctx context.Context, f Filter) (int, error) {
	n, err := s.collection.CountDocuments(ctx, f.ToBSON())
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(n), nil
}

// UpdateOne applique un $set sur le document id si les champs de expect n'ont pas changé
func (s *MongoProductStore) UpdateOne(ctx context.Context, id domain.ProductID, set, expect map[domain.Field]string) error {
	if err := checkFields(set, expect); err != nil {
		return err
	}
	update := bson.M{}
	for f, v := range set {
		update[string(f)] = v
	}

	res, err := s.collection.UpdateOne(ctx, expectFilter(id, expect), bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": mongoID(id)})
	if err != nil {
		return fmt.Errorf("check product %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// expectFilter sélectionne le document id dont les champs valent encore expect.
// Une valeur vide accepte un champ absent ou null; une valeur numérique accepte
// aussi sa forme BSON numérique, les documents importés mélangeant les deux.
func expectFilter(id domain.ProductID, expect map[domain.Field]string) bson.M {
	filter := bson.M{"_id": mongoID(id)}
	for f, v := range expect {
		if v == "" {
			filter[string(f)] = bson.M{"$in": bson.A{nil, ""}}
			continue
		}
		values := bson.A{v}
		if num, err := strconv.ParseFloat(v, 64); err == nil {
			values = append(values, num)
		}
		filter[string(f)] = bson.M{"$in": values}
	}
	return filter
}

// InsertMany insère les documents; _id est généré si l'identifiant est vide
func (s *MongoProductStore) InsertMany(ctx context.Context, products []domain.RawProduct) error {
	if len(products) == 0 {
		return nil
	}
	docs := make([]any, len(products))
	for i, p := range products {
		docs[i] = toDocument(p)
	}
	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

func fromDocument(doc bson.M) domain.RawProduct {
	text := func(f domain.Field) string {
		return shareddomain.RawFrom(doc[string(f)]).String()
	}
	raw := func(f domain.Field) shareddomain.RawValue {
		return shareddomain.RawFrom(doc[string(f)])
	}

	var id string
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	default:
		id = shareddomain.RawFrom(v).String()
	}

	return domain.RawProduct{
		ID:                 domain.ProductID(id),
		ProductName:        text(domain.FieldProductName),
		Category:           text(domain.FieldCategory),
		DiscountedPrice:    raw(domain.FieldDiscountedPrice),
		ActualPrice:        raw(domain.FieldActualPrice),
		DiscountPercentage: raw(domain.FieldDiscountPercentage),
		Rating:             raw(domain.FieldRating),
		RatingCount:        raw(domain.FieldRatingCount),
		AboutProduct:       text(domain.FieldAboutProduct),
		ImgLink:            text(domain.FieldImgLink),
		ProductLink:        text(domain.FieldProductLink),
		Reviews: domain.ReviewFields{
			UserID:        text(domain.FieldUserID),
			UserName:      text(domain.FieldUserName),
			ReviewID:      text(domain.FieldReviewID),
			ReviewTitle:   text(domain.FieldReviewTitle),
			ReviewContent: text(domain.FieldReviewContent),
			HelpfulCount:  text(domain.FieldHelpfulCount),
		},
	}
}

func toDocument(p domain.RawProduct) bson.D {
	doc := bson.D{}
	if p.ID != "" {
		doc = append(doc, bson.E{Key: "_id", Value: mongoID(p.ID)})
	}
	addText := func(f domain.Field, v string) {
		if v != "" {
			doc = append(doc, bson.E{Key: string(f), Value: v})
		}
	}
	addRaw := func(f domain.Field, v shareddomain.RawValue) {
		switch v.Kind() {
		case shareddomain.RawNumeric:
			n, _ := v.Number()
			doc = append(doc, bson.E{Key: string(f), Value: n})
		case shareddomain.RawText:
			doc = append(doc, bson.E{Key: string(f), Value: v.String()})
		}
	}

	addText(domain.FieldProductName, p.ProductName)
	addText(domain.FieldCategory, p.Category)
	addRaw(domain.FieldDiscountedPrice, p.DiscountedPrice)
	addRaw(domain.FieldActualPrice, p.ActualPrice)
	addRaw(domain.FieldDiscountPercentage, p.DiscountPercentage)
	addRaw(domain.FieldRating, p.Rating)
	addRaw(domain.FieldRatingCount, p.RatingCount)
	addText(domain.FieldAboutProduct, p.AboutProduct)
	addText(domain.FieldUserID, p.Reviews.UserID)
	addText(domain.FieldUserName, p.Reviews.UserName)
	addText(domain.FieldReviewID, p.Reviews.ReviewID)
	addText(domain.FieldReviewTitle, p.Reviews.ReviewTitle)
	addText(domain.FieldReviewContent, p.Reviews.ReviewContent)
	addText(domain.FieldImgLink, p.ImgLink)
	addText(domain.FieldProductLink, p.ProductLink)
	addText(domain.FieldHelpfulCount, p.Reviews.HelpfulCount)
	return doc
}
