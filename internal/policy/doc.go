// Package policy provides the authorization engine for the pizza service.
//
// Evaluate is a pure function of the caller's principal, the requested
// action and its target. It matches role variants and their franchise
// scope; it never inspects storage. Some actions are always allowed and
// instead return a Scope that tells the caller how much to reveal.
package policy
