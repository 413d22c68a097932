package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type medicationDoc struct {
	OwnerID   string     `firestore:"ownerId"`
	Name      string     `firestore:"name"`
	Dosage    string     `firestore:"dosage"`
	Times     []string   `firestore:"times"`
	Repeat    string     `firestore:"repeat"`
	StartDate time.Time  `firestore:"startDate"`
	EndDate   *time.Time `firestore:"endDate"`
	Status    string     `firestore:"status"`
	ImageURL  string     `firestore:"imageUrl"`
	ImagePath string     `firestore:"imagePath"`
	UpdatedAt time.Time  `firestore:"updatedAt,serverTimestamp"`
}

type logDoc struct {
	OwnerID        string    `firestore:"ownerId"`
	MedicationID   string    `firestore:"medicationId"`
	MedicationName string    `firestore:"medicationName"`
	TakenAt        time.Time `firestore:"takenAt"`
	Status         string    `firestore:"status"`
	Note           string    `firestore:"note"`
}

type guardianDoc struct {
	OwnerID     string    `firestore:"ownerId"`
	Email       string    `firestore:"email"`
	Permissions []string  `firestore:"permissions"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
}

func toMedicationDoc(m *models.Medication) medicationDoc {
	times := m.Times
	if times == nil {
		times = []string{}
	}
	return medicationDoc{
		OwnerID: m.OwnerID, Name: m.Name, Dosage: m.Dosage, Times: times, Repeat: string(m.Repeat),
		StartDate: m.StartDate, EndDate: m.EndDate, Status: string(m.Status),
		ImageURL: m.ImageURL, ImagePath: m.ImagePath,
	}
}

func (d medicationDoc) model(id string) models.Medication {
	return models.Medication{
		ID: id, OwnerID: d.OwnerID, Name: d.Name, Dosage: d.Dosage, Times: d.Times,
		Repeat: models.Repeat(d.Repeat), StartDate: d.StartDate, EndDate: d.EndDate,
		Status: models.MedicationStatus(d.Status), ImageURL: d.ImageURL, ImagePath: d.ImagePath,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d logDoc) model(id string) models.LogEntry {
	return models.LogEntry{
		ID: id, OwnerID: d.OwnerID, MedicationID: d.MedicationID, MedicationName: d.MedicationName,
		TakenAt: d.TakenAt, Status: models.LogStatus(d.Status), Note: d.Note,
	}
}

func (d guardianDoc) model(id string) models.Guardian {
	perms := make([]models.Permission, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		perms = append(perms, models.Permission(p))
	}
	return models.Guardian{ID: id, OwnerID: d.OwnerID, Email: d.Email, Permissions: perms, Status: models.GuardianStatus(d.Status)}
}

// FirestoreStore keeps each owner's collections under users/{uid}/.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// CollectionPath is the slash path of an owner's collection.
func CollectionPath(ownerID, collection string) string {
	return common.UserNamespace(ownerID) + collection
}

func (s *FirestoreStore) coll(ownerID, collection string) *firestore.CollectionRef {
	return s.client.Collection(CollectionPath(ownerID, collection))
}

func (s *FirestoreStore) AddMedication(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	ref, _, err := s.coll(m.OwnerID, common.CollectionMedications).Add(ctx, toMedicationDoc(m))
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	m.ID = ref.ID
	return m, nil
}

// UpdateMedication rewrites the document; it must already exist.
func (s *FirestoreStore) UpdateMedication(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	d := toMedicationDoc(m)
	_, err := s.coll(m.OwnerID, common.CollectionMedications).Doc(m.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: d.Name},
		{Path: "dosage", Value: d.Dosage},
		{Path: "times", Value: d.Times},
		{Path: "repeat", Value: d.Repeat},
		{Path: "startDate", Value: d.StartDate},
		{Path: "endDate", Value: d.EndDate},
		{Path: "status", Value: d.Status},
		{Path: "imageUrl", Value: d.ImageURL},
		{Path: "imagePath", Value: d.ImagePath},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	return m, nil
}

func (s *FirestoreStore) DeleteMedication(ctx context.Context, ownerID, id string) error {
	_, err := s.coll(ownerID, common.CollectionMedications).Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreError(err)
}

func (s *FirestoreStore) GetMedication(ctx context.Context, ownerID, id string) (*models.Medication, error) {
	snap, err := s.coll(ownerID, common.CollectionMedications).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	var d medicationDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode medication: %w", err)
	}
	m := d.model(snap.Ref.ID)
	return &m, nil
}

func (s *FirestoreStore) AddLog(ctx context.Context, e *models.LogEntry) (*models.LogEntry, error) {
	ref, _, err := s.coll(e.OwnerID, common.CollectionLogs).Add(ctx, logDoc{
		OwnerID: e.OwnerID, MedicationID: e.MedicationID, MedicationName: e.MedicationName,
		TakenAt: e.TakenAt, Status: string(e.Status), Note: e.Note,
	})
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	e.ID = ref.ID
	return e, nil
}

func (s *FirestoreStore) AddGuardian(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	coll := s.coll(g.OwnerID, common.CollectionGuardians)
	existing, err := coll.Where("email", "==", g.Email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	if len(existing) > 0 {
		return nil, common.ErrorAlreadyExists
	}

	perms := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, string(p))
	}
	ref, _, err := coll.Add(ctx, guardianDoc{OwnerID: g.OwnerID, Email: g.Email, Permissions: perms, Status: string(g.Status)})
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	g.ID = ref.ID
	return g, nil
}

func (s *FirestoreStore) ActivateGuardian(ctx context.Context, ownerID, id string) error {
	_, err := s.coll(ownerID, common.CollectionGuardians).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(models.GuardianActive)},
	})
	return mapFirestoreError(err)
}

func (s *FirestoreStore) WatchMedications(ctx context.Context, ownerID string, fn func([]models.Medication) error) error {
	q := s.coll(ownerID, common.CollectionMedications).OrderBy("name", firestore.Asc)
	return watchQuery(ctx, q, func(snap *firestore.DocumentSnapshot) (models.Medication, error) {
		var d medicationDoc
		err := snap.DataTo(&d)
		return d.model(snap.Ref.ID), err
	}, fn)
}

func (s *FirestoreStore) WatchLogs(ctx context.Context, ownerID string, fn func([]models.LogEntry) error) error {
	q := s.coll(ownerID, common.CollectionLogs).OrderBy("takenAt", firestore.Desc)
	return watchQuery(ctx, q, func(snap *firestore.DocumentSnapshot) (models.LogEntry, error) {
		var d logDoc
		err := snap.DataTo(&d)
		return d.model(snap.Ref.ID), err
	}, fn)
}

func (s *FirestoreStore) WatchGuardians(ctx context.Context, ownerID string, fn func([]models.Guardian) error) error {
	q := s.coll(ownerID, common.CollectionGuardians).OrderBy("createdAt", firestore.Asc)
	return watchQuery(ctx, q, func(snap *firestore.DocumentSnapshot) (models.Guardian, error) {
		var d guardianDoc
		err := snap.DataTo(&d)
		return d.model(snap.Ref.ID), err
	}, fn)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func watchQuery[T any](ctx context.Context, q firestore.Query,
	decode func(*firestore.DocumentSnapshot) (T, error), fn func([]T) error) error {

	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return nil
			}
			return mapFirestoreError(err)
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			return mapFirestoreError(err)
		}
		items := make([]T, 0, len(docs))
		for _, d := range docs {
			item, err := decode(d)
			if err != nil {
				return fmt.Errorf("decode %s: %w", d.Ref.Path, err)
			}
			items = append(items, item)
		}
		if err := fn(items); err != nil {
			return err
		}
	}
}

func mapFirestoreError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.PermissionDenied:
		return common.ErrorForbidden
	}
	return fmt.Errorf("firestore: %w", err)
}
