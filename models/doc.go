// Package models holds the immutable entities of the catalog together with
// their builders.
//
// Every entity is a value with unexported fields and read accessors. New
// instances come from New<Entity>Builder; modified copies come from
// ToBuilder, which seeds a builder with the current field values:
//
//	poco := models.NewProductBuilder().
//		SetProductID(12).
//		SetProductName("pocoMobile").
//		SetPrice(100).
//		Build()
//	samsung := poco.ToBuilder().SetProductID(10).SetProductName("samsung").Build()
//
// The package performs no validation and no I/O. Builders are plain field
// accumulators and must not be shared between goroutines without external
// locking; built entities are safe to share.
//
// The *_gen.go files are generated from schema.yaml.
package models

//go:generate go run ../cmd/buildergen -schema schema.yaml
