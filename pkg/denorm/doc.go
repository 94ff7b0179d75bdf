// Package denorm keeps cached copies of a source entity's fields on the
// target entity it belongs to.
//
// For a relation from source type "suppliers" to target type "products", the
// target carries columns named supplier_<field> for every supplier field it
// wants cached, plus supplier_denormalized_at. The supplier whose primary key
// equals products.supplier_id is the current source. The Engine reacts to
// source lifecycle events:
//
//   - after a source is created, it is projected onto its target;
//   - after the current source is updated, it is projected again;
//   - before the current source is destroyed, the newest opted-in sibling is
//     projected in its place, or the cached columns are cleared when no
//     sibling remains.
//
// Storage, type metadata, association traversal and lifecycle delivery are
// supplied by the caller through the interfaces in pkg/types.
package denorm
