// Package model defines the GORM models of the portfolio database.
//
// # Tables
//
//   - user: accounts with a bcrypt password hash and a Role
//   - blog: posts addressed by a unique slug, Markdown content
//   - project: portfolio entries addressed by a unique slug, with Tags
//   - messages: contact form submissions
//
// The audit_events table is written by package audit and has no model
// here.
package model
