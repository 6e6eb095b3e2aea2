package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

type adRepository struct {
	coll *mongo.Collection
}

func NewAdRepository(db *mongo.Database) *adRepository {
	return &adRepository{coll: db.Collection(adsCollection)}
}

func (r *adRepository) CreateAd(ctx context.Context, ad *model.Ad) error {
	now := time.Now().UTC()
	ad.ID = primitive.NewObjectID()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	if ad.Images == nil {
		ad.Images = []string{}
	}

	_, err := r.coll.InsertOne(ctx, ad)
	return err
}

func (r *adRepository) GetAdByID(ctx context.Context, id string) (*model.Ad, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var ad model.Ad
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ad, nil
}

func (r *adRepository) GetUserAds(ctx context.Context, userID string) ([]*model.Ad, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ads := []*model.Ad{}
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// FilterAds 按标题前缀搜索，支持价格/时间排序和分页
func (r *adRepository) FilterAds(ctx context.Context, filter model.AdFilter) ([]*model.Ad, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(filter.Search),
			Options: "i",
		}}
	}

	var sort bson.D
	switch filter.Sort {
	case "1": // 价格从低到高
		sort = bson.D{{Key: "price", Value: 1}}
	case "2": // 价格从高到低
		sort = bson.D{{Key: "price", Value: -1}}
	default: // 最新优先
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 6
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	ads := []*model.Ad{}
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func (r *adRepository) UpdateAd(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{}
	for k, v := range fields {
		update[k] = v
	}
	update["updated_at"] = time.Now().UTC()

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	return err
}

func (r *adRepository) DeleteAd(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
