// Package models defines the domain records of the family album.
//
// Ownership follows the family boundary: every User belongs to exactly one
// Family, every Album to one Family, and every Photo to one Album (and through
// it, to that Album's Family). Relationships are held as ID strings rather than
// pointers so records can be loaded independently.
//
// Photos carry a denormalised FamilyID copied from their album at write time;
// album family never changes, so the copy cannot go stale.
package models
