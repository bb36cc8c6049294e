// Package upload implements the generic upload field the CSV import field is
// configured from. A Field describes a file input: how many files it accepts,
// which extensions are allowed, the logical folder uploads land in, extra CSS
// classes and the link the front-end script posts to. It never handles bytes;
// transport and storage belong to the HTTP handler mounted behind Link.
//
// Fields are owned by a Form, which enforces unique names and supplies the
// action URL links are derived from. SchemaDataDefaults serialises the field
// for the front-end script. Wrappers that need to change the links embedded
// in that schema install themselves with SetLinker.
package upload
