package omclient

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/dbx"
	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/archive"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// StoreClient implements OpenMetadataClient on top of the SQL repositories.
type StoreClient struct {
	db          *sql.DB
	repos       repomanager.RepositoryManager
	archiver    archive.Archiver
	logger      logging.Logger
	maxPageSize int

	now     func() time.Time
	newGUID func() string
}

func NewStoreClient(db *sql.DB, repos repomanager.RepositoryManager, archiver archive.Archiver,
	logger logging.Logger, maxPageSize int) *StoreClient {

	if archiver == nil {
		archiver = archive.NopArchiver{}
	}
	if maxPageSize <= 0 {
		maxPageSize = common.DefaultMaxPageSize
	}
	return &StoreClient{
		db:          db,
		repos:       repos,
		archiver:    archiver,
		logger:      logger.With("module", "store_client"),
		maxPageSize: maxPageSize,
		now:         func() time.Time { return time.Now().UTC() },
		newGUID:     func() string { return uuid.NewString() },
	}
}

func (c *StoreClient) CreateMetadataElement(ctx context.Context, userID string, in models.NewElement) (string, error) {
	for _, g := range []string{in.ParentGUID, in.AnchorGUID} {
		if g == "" {
			continue
		}
		if err := checkGUIDs(g); err != nil {
			return "", err
		}
	}

	now := c.now()
	e := &models.Element{
		GUID:       c.newGUID(),
		TypeName:   in.TypeName,
		AnchorGUID: in.AnchorGUID,
		Properties: in.Properties,
		Version:    1,
		CreatedBy:  userID,
		UpdatedBy:  userID,
		CreateTime: now,
		UpdateTime: now,
	}

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		elementRepo := c.repos.Elements(tx)

		if in.ParentGUID != "" {
			if _, err := elementRepo.GetByGUID(ctx, in.ParentGUID); err != nil {
				return fmt.Errorf("parent %s: %w", in.ParentGUID, err)
			}
		}

		if err := elementRepo.Create(ctx, e); err != nil {
			return err
		}

		if in.ParentGUID == "" || in.ParentRelationshipTypeName == "" {
			return nil
		}

		rel := &models.Relationship{
			GUID:       c.newGUID(),
			TypeName:   in.ParentRelationshipTypeName,
			End1GUID:   in.ParentGUID,
			End2GUID:   e.GUID,
			Properties: in.ParentRelationshipProps,
			CreatedBy:  userID,
			CreateTime: now,
		}
		if in.ParentAtEnd2 {
			rel.End1GUID, rel.End2GUID = e.GUID, in.ParentGUID
		}
		return c.repos.Relationships(tx).Create(ctx, rel)
	})
	if err != nil {
		return "", err
	}

	return e.GUID, nil
}

func (c *StoreClient) UpdateMetadataElement(ctx context.Context, userID, guid string, replaceAll bool, props map[string]any) error {
	if err := checkGUIDs(guid); err != nil {
		return err
	}
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repos.Elements(tx)

		e, err := repo.GetByGUID(ctx, guid)
		if err != nil {
			return err
		}

		e.Properties = mergeProperties(e.Properties, props, replaceAll)
		e.UpdatedBy = userID
		e.UpdateTime = c.now()

		return repo.Update(ctx, e)
	})
}

// DeleteMetadataElement removes guid together with its relationships and,
// recursively, every element anchored to it. Snapshots of everything removed
// go to the archiver once the transaction commits.
func (c *StoreClient) DeleteMetadataElement(ctx context.Context, userID, guid string) error {
	if err := checkGUIDs(guid); err != nil {
		return err
	}

	var removed []*models.Element

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		elementRepo := c.repos.Elements(tx)
		relRepo := c.repos.Relationships(tx)

		root, err := elementRepo.GetByGUID(ctx, guid)
		if err != nil {
			return err
		}

		removed = []*models.Element{root}
		for i := 0; i < len(removed); i++ {
			anchored, err := elementRepo.GetAnchored(ctx, removed[i].GUID)
			if err != nil {
				return err
			}
			removed = append(removed, anchored...)
		}

		// Leaves first so anchors outlive their dependants.
		for i := len(removed) - 1; i >= 0; i-- {
			if _, err := relRepo.DeleteForElement(ctx, removed[i].GUID); err != nil {
				return err
			}
			if err := elementRepo.Delete(ctx, removed[i].GUID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info(ctx, "element deleted", "guid", guid, "user", userID, "cascade", len(removed)-1)

	if err := c.archiver.Archive(ctx, removed); err != nil {
		c.logger.Warn(ctx, "archive failed", "guid", guid, "error", err.Error())
	}
	return nil
}

func (c *StoreClient) GetMetadataElementByGUID(ctx context.Context, userID, guid string) (*models.Element, error) {
	if err := checkGUIDs(guid); err != nil {
		return nil, err
	}
	return c.repos.Elements(c.db).GetByGUID(ctx, guid)
}

func (c *StoreClient) FindMetadataElements(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error) {
	q.Value = ""
	q.PageSize = pageSize(q.PageSize, c.maxPageSize)
	return c.repos.Elements(c.db).Find(ctx, q)
}

func (c *StoreClient) GetMetadataElementsByPropertyValue(ctx context.Context, userID string, q models.ElementQuery) ([]*models.Element, error) {
	if q.Value == "" {
		return nil, common.NewInvalidParameter("getMetadataElementsByPropertyValue", "value", "must not be empty")
	}
	q.SearchString = ""
	q.PageSize = pageSize(q.PageSize, c.maxPageSize)
	return c.repos.Elements(c.db).Find(ctx, q)
}

func (c *StoreClient) CreateRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string,
	props map[string]any) (string, error) {

	if err := checkGUIDs(end1GUID, end2GUID); err != nil {
		return "", err
	}

	rel := &models.Relationship{
		GUID:       c.newGUID(),
		TypeName:   typeName,
		End1GUID:   end1GUID,
		End2GUID:   end2GUID,
		Properties: props,
		CreatedBy:  userID,
		CreateTime: c.now(),
	}

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		elementRepo := c.repos.Elements(tx)
		for _, g := range []string{end1GUID, end2GUID} {
			if _, err := elementRepo.GetByGUID(ctx, g); err != nil {
				return fmt.Errorf("relationship end %s: %w", g, err)
			}
		}
		return c.repos.Relationships(tx).Create(ctx, rel)
	})
	if err != nil {
		return "", err
	}
	return rel.GUID, nil
}

func (c *StoreClient) DeleteRelatedElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string) error {
	if err := checkGUIDs(end1GUID, end2GUID); err != nil {
		return err
	}
	return c.repos.Relationships(c.db).Delete(ctx, typeName, end1GUID, end2GUID)
}

func (c *StoreClient) GetRelatedMetadataElements(ctx context.Context, userID, guid string, startingEnd int, typeNames []string,
	opts models.SearchOptions) ([]*models.RelatedElement, error) {

	if err := checkGUIDs(guid); err != nil {
		return nil, err
	}
	opts.PageSize = pageSize(opts.PageSize, c.maxPageSize)

	elementRepo := c.repos.Elements(c.db)
	if _, err := elementRepo.GetByGUID(ctx, guid); err != nil {
		return nil, err
	}

	rels, err := c.repos.Relationships(c.db).GetForElement(ctx, guid, startingEnd, typeNames, opts)
	if err != nil {
		return nil, err
	}

	result := make([]*models.RelatedElement, 0, len(rels))
	for _, rel := range rels {
		other := rel.End2GUID
		if other == guid {
			other = rel.End1GUID
		}
		e, err := elementRepo.GetByGUID(ctx, other)
		if err != nil {
			return nil, fmt.Errorf("related element %s: %w", other, err)
		}
		result = append(result, &models.RelatedElement{Relationship: rel, Element: e})
	}
	return result, nil
}

// checkGUIDs rejects ids the guid columns cannot hold. Such an id names no
// element, so it is reported the way a missing one is.
func checkGUIDs(guids ...string) error {
	for _, g := range guids {
		if _, err := uuid.Parse(g); err != nil {
			return fmt.Errorf("element %q: %w", g, common.ErrorNotFound)
		}
	}
	return nil
}
