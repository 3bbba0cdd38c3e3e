package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

const mongoIDField = "_id"

// MongoDocumentRepository stores each collection as a MongoDB collection with
// string identifiers.
type MongoDocumentRepository struct {
	db *mongo.Database
}

// NewMongoDocumentRepository constructs the repository.
func NewMongoDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{db: db}
}

// EnsureIndexes creates the indexes the listing queries rely on.
func (r *MongoDocumentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		models.CollectionStudents: {
			{Keys: bson.D{{Key: models.FieldCreatedAt, Value: -1}, {Key: models.StudentFieldName, Value: 1}}},
		},
		models.CollectionLectures: {
			{Keys: bson.D{{Key: models.LectureFieldDate, Value: 1}}},
			{Keys: bson.D{{Key: models.LectureFieldCourse, Value: 1}, {Key: models.LectureFieldDate, Value: 1}}},
		},
		models.CollectionBanners: {
			{Keys: bson.D{{Key: models.BannerFieldOrder, Value: 1}}},
		},
		models.CollectionResults: {
			{Keys: bson.D{{Key: models.ResultFieldStudentID, Value: 1}}},
			{Keys: bson.D{{Key: models.ResultFieldNameLower, Value: 1}, {Key: models.FieldCreatedAt, Value: -1}}},
		},
	}
	for name, specs := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return mongoStoreError("ensure indexes", name, err)
		}
	}
	return nil
}

// Find returns the documents matching query.
func (r *MongoDocumentRepository) Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error) {
	opts := options.Find()
	if len(query.OrderBy) > 0 || query.StartAfter != nil {
		opts.SetSort(mongoSort(totalOrder(query.OrderBy)))
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := r.db.Collection(collection).Find(ctx, mongoQueryFilter(query), opts)
	if err != nil {
		return nil, mongoStoreError("find", collection, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, mongoStoreError("find", collection, err)
	}

	docs := make([]models.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

// Count returns the number of documents matching predicates.
func (r *MongoDocumentRepository) Count(ctx context.Context, collection string, predicates []models.Predicate) (int64, error) {
	n, err := r.db.Collection(collection).CountDocuments(ctx, mongoFilter(predicates, nil))
	if err != nil {
		return 0, mongoStoreError("count", collection, err)
	}
	return n, nil
}

// Get fetches a document by identifier.
func (r *MongoDocumentRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	var m bson.M
	err := r.db.Collection(collection).FindOne(ctx, bson.M{mongoIDField: mongoIDMatch(id)}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, mongoStoreError("get", collection, err)
	}
	doc := fromBSON(m)
	return &doc, nil
}

// Create stores a new document under a generated identifier.
func (r *MongoDocumentRepository) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	payload := bson.M{mongoIDField: id}
	for k, v := range models.CloneFields(fields) {
		payload[k] = v
	}
	if _, err := r.db.Collection(collection).InsertOne(ctx, payload); err != nil {
		return "", mongoStoreError("create", collection, err)
	}
	return id, nil
}

// Merge sets the given fields, creating the document when it is missing. A
// document imported under the equivalent ObjectID key is updated in place.
func (r *MongoDocumentRepository) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	set := bson.M(models.CloneFields(fields))
	coll := r.db.Collection(collection)

	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		merged, err := mergeObjectID(ctx, coll, oid, set)
		if err != nil {
			return mongoStoreError("merge", collection, err)
		}
		if merged {
			return nil
		}
	}

	if len(set) == 0 {
		_, err := coll.InsertOne(ctx, bson.M{mongoIDField: id})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return mongoStoreError("merge", collection, err)
		}
		return nil
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{mongoIDField: id},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		return mongoStoreError("merge", collection, err)
	}
	return nil
}

// mergeObjectID applies set to the document keyed by oid, reporting whether
// such a document exists. It never inserts.
func mergeObjectID(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, set bson.M) (bool, error) {
	filter := bson.M{mongoIDField: oid}
	if len(set) == 0 {
		n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		return n > 0, err
	}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes a document; deleting a missing document is not an error.
func (r *MongoDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	if _, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{mongoIDField: mongoIDMatch(id)}); err != nil {
		return mongoStoreError("delete", collection, err)
	}
	return nil
}

func mongoQueryFilter(query models.Query) bson.M {
	var keyset [][]models.Predicate
	if query.StartAfter != nil {
		keyset = keysetClauses(query.OrderBy, *query.StartAfter)
		key := mongoCursorKey(*query.StartAfter)
		for _, clause := range keyset {
			last := &clause[len(clause)-1]
			if last.Field == models.FieldID {
				last.Value = mongoKeyBound{key: key}
			}
		}
	}
	return mongoFilter(query.Predicates, keyset)
}

// mongoKeyBound marks the identifier tiebreak of a keyset clause, which has to
// cross BSON type brackets.
type mongoKeyBound struct {
	key interface{}
}

func mongoCursorKey(doc models.Document) interface{} {
	if oid, ok := doc.Key.(primitive.ObjectID); ok {
		return oid
	}
	return doc.ID
}

// mongoKeyRange matches identifiers strictly after (Gt) or before (Lt) key in
// _id order. Comparison operators only match values of the operand's BSON
// type, and ObjectIDs sort after strings, so the other bracket is added when
// it lies on the requested side.
func mongoKeyRange(op models.Operator, key interface{}) bson.M {
	cmp := "$gt"
	if op == models.OpLt {
		cmp = "$lt"
	}
	cond := bson.M{mongoIDField: bson.M{cmp: key}}

	_, isOID := key.(primitive.ObjectID)
	var other string
	switch {
	case !isOID && op == models.OpGt:
		other = "objectId"
	case isOID && op == models.OpLt:
		other = "string"
	default:
		return cond
	}
	return bson.M{"$or": bson.A{cond, bson.M{mongoIDField: bson.M{"$type": other}}}}
}

// mongoFilter builds the conjunction of predicates, optionally AND-ed with the
// disjunction of keyset clauses.
func mongoFilter(predicates []models.Predicate, keyset [][]models.Predicate) bson.M {
	conds := make(bson.A, 0, len(predicates)+1)
	for _, p := range predicates {
		conds = append(conds, mongoCondition(p))
	}
	if len(keyset) > 0 {
		or := make(bson.A, 0, len(keyset))
		for _, clause := range keyset {
			or = append(or, mongoFilter(clause, nil))
		}
		conds = append(conds, bson.M{"$or": or})
	}
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0].(bson.M)
	default:
		return bson.M{"$and": conds}
	}
}

func mongoCondition(p models.Predicate) bson.M {
	if bound, ok := p.Value.(mongoKeyBound); ok {
		return mongoKeyRange(p.Op, bound.key)
	}
	field := mongoField(p.Field)
	switch p.Op {
	case models.OpEq:
		return bson.M{field: p.Value}
	case models.OpLt:
		return bson.M{field: bson.M{"$lt": p.Value}}
	case models.OpLte:
		return bson.M{field: bson.M{"$lte": p.Value}}
	case models.OpGt:
		return bson.M{field: bson.M{"$gt": p.Value}}
	case models.OpGte:
		return bson.M{field: bson.M{"$gte": p.Value}}
	case models.OpMissing:
		// null matches both explicit nulls and absent fields.
		return bson.M{field: nil}
	default:
		return bson.M{field: p.Value}
	}
}

func mongoSort(orders []models.Order) bson.D {
	sort := make(bson.D, 0, len(orders))
	for _, o := range orders {
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: mongoField(o.Field), Value: dir})
	}
	return sort
}

func mongoField(field string) string {
	if field == models.FieldID {
		return mongoIDField
	}
	return field
}

// mongoIDMatch also matches documents imported with ObjectID keys.
func mongoIDMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{id, oid}}
	}
	return id
}

func fromBSON(m bson.M) models.Document {
	doc := models.Document{Fields: make(map[string]interface{}, len(m))}
	for k, v := range m {
		if k == mongoIDField {
			doc.ID = mongoIDString(v)
			if oid, ok := v.(primitive.ObjectID); ok {
				doc.Key = oid
			}
			continue
		}
		doc.Fields[k] = fromBSONValue(v)
	}
	return doc
}

func mongoIDString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return primitiveString(id)
	}
}

func fromBSONValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case primitive.DateTime:
		return typed.Time().UTC()
	case primitive.ObjectID:
		return typed.Hex()
	case primitive.Timestamp:
		return time.Unix(int64(typed.T), 0).UTC()
	case primitive.D:
		return fromBSONValue(typed.Map())
	case primitive.M:
		out := make(map[string]interface{}, len(typed))
		for k, inner := range typed {
			out[k] = fromBSONValue(inner)
		}
		return out
	case primitive.A:
		out := make([]interface{}, len(typed))
		for i, inner := range typed {
			out[i] = fromBSONValue(inner)
		}
		return out
	default:
		return v
	}
}

func primitiveString(v interface{}) string {
	switch typed := v.(type) {
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func mongoStoreError(op, collection string, err error) error {
	return &StoreError{Op: op, Collection: collection, Code: mongoErrorCode(err), Err: err}
}

func mongoErrorCode(err error) string {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Name != "" {
			return cmdErr.Name
		}
		return strconv.Itoa(int(cmdErr.Code))
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		if len(writeErr.WriteErrors) > 0 {
			return strconv.Itoa(writeErr.WriteErrors[0].Code)
		}
		if writeErr.WriteConcernError != nil {
			return writeErr.WriteConcernError.Name
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "DEADLINE_EXCEEDED"
	}
	if errors.Is(err, context.Canceled) {
		return "CANCELLED"
	}
	return ""
}
