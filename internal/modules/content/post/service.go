package post

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/excerpt"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/query"
)

// publishDateLayout is the public listing date format (DD-MM-YYYY).
const publishDateLayout = "02-01-2006"

// PostStore is the persistence contract the service consumes.
type PostStore interface {
	FindPage(ctx context.Context, q *query.Query) ([]models.PostDetail, error)
	Count(ctx context.Context, q *query.Query) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Insert(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, id primitive.ObjectID, u models.PostUpdate) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// UserStore resolves whether the acting user exists.
type UserStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AssetStore uploads a binary object under a caller-chosen key and returns
// its public URL. Re-uploading a key overwrites the object.
type AssetStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Asset is an attached binary; a nil *Asset means no attachment.
type Asset struct {
	Data        []byte
	ContentType string
}

// Service implements the public read model and the gated post mutations.
type Service struct {
	posts  PostStore
	users  UserStore
	assets AssetStore
}

func NewService(posts PostStore, users UserStore, assets AssetStore) *Service {
	return &Service{posts: posts, users: users, assets: assets}
}

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("post not found")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func missingField(name string) error {
	return &ValidationError{Message: name + " is required"}
}

// ListResult is the public listing payload.
type ListResult struct {
	Posts      []Projection `json:"posts"`
	TotalPages int          `json:"totalPages"`
}

// Projection is one enriched post row on the public listing. Category and
// subcategory surface as the joined document's id, so a dangling reference
// becomes null rather than an error.
type Projection struct {
	ID              primitive.ObjectID   `json:"_id"`
	Title           string               `json:"title"`
	Slug            string               `json:"slug"`
	Content         string               `json:"content"`
	Excerpt         string               `json:"excerpt"`
	Author          string               `json:"author"`
	Category        *primitive.ObjectID  `json:"category"`
	Subcategory     *primitive.ObjectID  `json:"subcategory"`
	Tags            []primitive.ObjectID `json:"tags"`
	PublishDate     string               `json:"publish_date"`
	CategoryName    *string              `json:"categoryName"`
	SubcategoryName *string              `json:"subcategoryName"`
	TagNames        []string             `json:"tagNames"`
	MetaTitle       string               `json:"metaTitle"`
	MetaDescription string               `json:"metaDescription"`
	MetaKeywords    string               `json:"metaKeywords"`
	FeaturedImage   string               `json:"featuredImage"`
	ImageCredit     string               `json:"imageCredit"`
	Status          string               `json:"status"`
	UpdatedDate     time.Time            `json:"updated_date"`
}

// List returns one page of published posts, newest publish_date first, with
// taxonomy names resolved. TotalPages reflects the full published set.
func (s *Service) List(ctx context.Context, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = pagination.DefaultPage
	}
	if limit < 1 {
		limit = pagination.DefaultLimit
	}

	q := listQuery(page, limit)
	rows, err := s.posts.FindPage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	total, err := s.posts.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	out := make([]Projection, len(rows))
	for i := range rows {
		out[i] = project(&rows[i])
	}
	return &ListResult{Posts: out, TotalPages: pagination.TotalPages(total, limit)}, nil
}

func listQuery(page, limit int) *query.Query {
	return query.New().
		Match(bson.M{"status": models.StatusPublished}).
		SortDesc("publish_date").
		LookupOne("categories", "category", "_id", "categoryDoc").
		LookupOne("subcategories", "subcategory", "_id", "subcategoryDoc").
		LookupMany("tags", "tags", "_id", "tagDocs").
		Project(bson.M{
			"title": 1, "slug": 1, "content": 1, "excerpt": 1, "author": 1,
			"category": 1, "subcategory": 1, "tags": 1,
			"metaTitle": 1, "metaDescription": 1, "metaKeywords": 1,
			"featuredImage": 1, "imageCredit": 1, "status": 1,
			"publish_date": 1, "updated_date": 1,
			"categoryDoc": 1, "subcategoryDoc": 1, "tagDocs": 1,
		}).
		Skip(int64((page - 1) * limit)).
		Limit(int64(limit))
}

func project(d *models.PostDetail) Projection {
	p := Projection{
		ID:              d.ID,
		Title:           d.Title,
		Slug:            d.Slug,
		Content:         d.Content,
		Excerpt:         d.Excerpt,
		Author:          d.Author,
		Tags:            d.Tags,
		PublishDate:     d.PublishDate.Format(publishDateLayout),
		TagNames:        []string{},
		MetaTitle:       d.MetaTitle,
		MetaDescription: d.MetaDescription,
		MetaKeywords:    d.MetaKeywords,
		FeaturedImage:   d.FeaturedImage,
		ImageCredit:     d.ImageCredit,
		Status:          d.Status,
		UpdatedDate:     d.UpdatedDate,
	}
	if p.Tags == nil {
		p.Tags = []primitive.ObjectID{}
	}
	if d.CategoryDoc != nil {
		id, name := d.CategoryDoc.ID, d.CategoryDoc.Name
		p.Category, p.CategoryName = &id, &name
	}
	if d.SubcategoryDoc != nil {
		id, name := d.SubcategoryDoc.ID, d.SubcategoryDoc.Name
		p.Subcategory, p.SubcategoryName = &id, &name
	}

	// Resolved names follow the order of the reference list, not the join
	// result; unresolved references contribute no name.
	names := make(map[primitive.ObjectID]string, len(d.TagDocs))
	for _, t := range d.TagDocs {
		names[t.ID] = t.Name
	}
	for _, id := range d.Tags {
		if n, ok := names[id]; ok {
			p.TagNames = append(p.TagNames, n)
		}
	}
	return p
}

// CreateInput carries the multipart create payload.
type CreateInput struct {
	Title           string
	Content         string
	Excerpt         string
	Author          string
	Category        string
	Subcategory     string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	ImageCredit     string
	Status          string
	Asset           *Asset
}

// Create validates the payload, authorizes the actor, stages the asset when
// present and persists the new post. The asset is uploaded before the insert,
// so a failed upload leaves no post; a failed insert after a successful
// upload leaves an orphaned object behind (no compensation is attempted).
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) error {
	if err := validateRequired(in.Title, in.Content, in.Author, in.Category, in.Subcategory); err != nil {
		return err
	}
	if err := s.authorize(ctx, actor); err != nil {
		return err
	}

	category, err := parseRef(in.Category, "category")
	if err != nil {
		return err
	}
	subcategory, err := parseRef(in.Subcategory, "subcategory")
	if err != nil {
		return err
	}
	tags, err := parseTagRefs(NormalizeTags(in.Tags))
	if err != nil {
		return err
	}

	featured := ""
	if in.Asset != nil {
		url, err := s.uploadAsset(ctx, newObjectKey(in.Asset.ContentType), in.Asset)
		if err != nil {
			return err
		}
		featured = url
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.StatusDraft
	}
	body := in.Excerpt
	if strings.TrimSpace(body) == "" {
		body = excerpt.FromMarkdown(in.Content, 0)
	}

	now := time.Now()
	doc := &models.Post{
		Title:           in.Title,
		Slug:            slugify(in.Title),
		Content:         in.Content,
		Excerpt:         body,
		Author:          in.Author,
		Category:        &category,
		Subcategory:     &subcategory,
		Tags:            tags,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
		FeaturedImage:   featured,
		ImageCredit:     in.ImageCredit,
		Status:          status,
		PublishDate:     now,
		UpdatedDate:     now,
	}
	if err := s.posts.Insert(ctx, doc); err != nil {
		return fmt.Errorf("persist post: %w", err)
	}
	return nil
}

// UpdateInput carries the multipart update payload. Every listed field
// replaces the stored value, including empty values.
type UpdateInput struct {
	ID              string
	Title           string
	Content         string
	Excerpt         string
	Author          string
	Category        string
	Subcategory     string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	ImageCredit     string
	Status          string
	Asset           *Asset
}

// Update overwrites the target post. A new asset is uploaded under a key
// derived from the target id (replacing the prior object at that key) and
// the image URL is overwritten; without an asset the stored URL is untouched.
func (s *Service) Update(ctx context.Context, actor string, in UpdateInput) error {
	if err := validateRequired(in.Title, in.Content, in.Author, in.Category, in.Subcategory); err != nil {
		return err
	}
	if err := s.authorize(ctx, actor); err != nil {
		return err
	}

	if strings.TrimSpace(in.ID) == "" {
		return &ValidationError{Message: "post id is required"}
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.ID))
	if err != nil {
		return &ValidationError{Message: "invalid post id"}
	}
	existing, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve post: %w", err)
	}
	if existing == nil {
		return ErrNotFound
	}

	category, err := parseRef(in.Category, "category")
	if err != nil {
		return err
	}
	subcategory, err := parseRef(in.Subcategory, "subcategory")
	if err != nil {
		return err
	}
	tags, err := parseTagRefs(NormalizeTags(in.Tags))
	if err != nil {
		return err
	}

	var featured *string
	if in.Asset != nil {
		url, err := s.uploadAsset(ctx, updateObjectKey(id, in.Asset.ContentType), in.Asset)
		if err != nil {
			return err
		}
		featured = &url
	}

	matched, err := s.posts.Update(ctx, id, models.PostUpdate{
		Title:           in.Title,
		Content:         in.Content,
		Excerpt:         in.Excerpt,
		Author:          in.Author,
		Category:        &category,
		Subcategory:     &subcategory,
		Tags:            tags,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
		ImageCredit:     in.ImageCredit,
		Status:          in.Status,
		FeaturedImage:   featured,
		UpdatedDate:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("persist post: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Delete removes the target post. Previously uploaded assets are not cleaned
// up.
func (s *Service) Delete(ctx context.Context, actor, rawID string) error {
	if strings.TrimSpace(rawID) == "" {
		return &ValidationError{Message: "post id is required"}
	}
	if err := s.authorize(ctx, actor); err != nil {
		return err
	}

	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return &ValidationError{Message: "invalid post id"}
	}
	matched, err := s.posts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// authorize requires a session-bound actor whose user record exists.
func (s *Service) authorize(ctx context.Context, actor string) error {
	if strings.TrimSpace(actor) == "" {
		return ErrUnauthorized
	}
	ok, err := s.users.Exists(ctx, actor)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) uploadAsset(ctx context.Context, key string, a *Asset) (string, error) {
	if s.assets == nil {
		return "", errors.New("asset store not configured")
	}
	url, err := s.assets.Upload(ctx, key, a.Data, a.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	return url, nil
}

func validateRequired(title, content, author, category, subcategory string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return missingField("title")
	case strings.TrimSpace(content) == "":
		return missingField("content")
	case strings.TrimSpace(author) == "":
		return missingField("author")
	case strings.TrimSpace(category) == "":
		return missingField("category")
	case strings.TrimSpace(subcategory) == "":
		return missingField("subcategory")
	}
	return nil
}

// NormalizeTags joins the values with commas, re-splits on commas and trims
// each element. A single value that itself contains a comma therefore comes
// back as multiple tags; empty elements are dropped.
func NormalizeTags(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	parts := strings.Split(strings.Join(values, ","), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseRef(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Message: "invalid " + field + " id"}
	}
	return id, nil
}

func parseTagRefs(values []string) ([]primitive.ObjectID, error) {
	if len(values) == 0 {
		return []primitive.ObjectID{}, nil
	}
	out := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, &ValidationError{Message: "invalid tag id: " + v}
		}
		out = append(out, id)
	}
	return out, nil
}

// extFromContentType derives a file extension from the declared media type
// ("image/png" → "png").
func extFromContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if i := strings.Index(ct, "/"); i >= 0 && i+1 < len(ct) {
		ext := ct[i+1:]
		if j := strings.Index(ext, ";"); j >= 0 {
			ext = ext[:j]
		}
		if ext = strings.TrimSpace(ext); ext != "" {
			return ext
		}
	}
	return "bin"
}

// newObjectKey synthesizes a pseudo-random create key: post-<11 digits>.<ext>.
func newObjectKey(contentType string) string {
	return fmt.Sprintf("post-%011d.%s", rand.Int64N(100_000_000_000), extFromContentType(contentType))
}

// updateObjectKey is deterministic per target, so a re-upload overwrites the
// prior object.
func updateObjectKey(id primitive.ObjectID, contentType string) string {
	return "post-" + id.Hex() + "." + extFromContentType(contentType)
}

func slugify(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		default:
			if !dash && sb.Len() > 0 {
				sb.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
