// Package domain defines the core data models and collaborator contracts
// shared across meshguard. It contains plain types (mesh, node, policy,
// token state) and interfaces only; behavior lives in the service packages.
package domain
