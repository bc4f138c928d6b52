package incidents

import (
	"context"

	"cloud.google.com/go/firestore"
)

// FirestoreSource reads a collection with a single unfiltered query.
type FirestoreSource struct {
	client *firestore.Client
}

func NewFirestoreSource(client *firestore.Client) *FirestoreSource {
	return &FirestoreSource{client: client}
}

func (s *FirestoreSource) FetchAll(ctx context.Context, collection string) ([]RawRecord, error) {
	docs, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]RawRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, RawRecord{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return out, nil
}
