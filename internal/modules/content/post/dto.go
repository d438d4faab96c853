package post

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

func createInputFromForm(c *gin.Context) (CreateInput, error) {
	asset, err := formAsset(c)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		Title:           c.PostForm("title"),
		Content:         c.PostForm("content"),
		Excerpt:         c.PostForm("excerpt"),
		Author:          c.PostForm("author"),
		Category:        c.PostForm("category"),
		Subcategory:     c.PostForm("subcategory"),
		Tags:            c.PostFormArray("tags"),
		MetaTitle:       c.PostForm("metaTitle"),
		MetaDescription: c.PostForm("metaDescription"),
		MetaKeywords:    c.PostForm("metaKeywords"),
		ImageCredit:     c.PostForm("imageCredit"),
		Status:          c.PostForm("status"),
		Asset:           asset,
	}, nil
}

func updateInputFromForm(c *gin.Context) (UpdateInput, error) {
	asset, err := formAsset(c)
	if err != nil {
		return UpdateInput{}, err
	}
	return UpdateInput{
		ID:              c.PostForm("_id"),
		Title:           c.PostForm("title"),
		Content:         c.PostForm("content"),
		Excerpt:         c.PostForm("excerpt"),
		Author:          c.PostForm("author"),
		Category:        c.PostForm("category"),
		Subcategory:     c.PostForm("subcategory"),
		Tags:            c.PostFormArray("tags"),
		MetaTitle:       c.PostForm("metaTitle"),
		MetaDescription: c.PostForm("metaDescription"),
		MetaKeywords:    c.PostForm("metaKeywords"),
		ImageCredit:     c.PostForm("imageCredit"),
		Status:          c.PostForm("status"),
		Asset:           asset,
	}, nil
}

// formAsset reads the optional featuredImage part. A missing part is not an
// error.
func formAsset(c *gin.Context) (*Asset, error) {
	fh, err := c.FormFile("featuredImage")
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	return &Asset{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}
