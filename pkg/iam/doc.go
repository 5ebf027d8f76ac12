// Package iam holds identity and access management for staffhub.
//
// # Overview
//
//   - iam/authz      tier hierarchy and placement rules
//   - iam/idp        identity provider gateway (Cognito adapter in idp/idpcognito)
//   - iam/auth       bearer middleware, access token verification, audit log
//   - iam/session    login, refresh and logout
//   - iam/password   set, forgot, reset, admin reset and change password flows
//   - iam/iamapi     HTTP handlers
//
// # Authentication
//
// Credentials live in the identity provider. Local employee and admin records
// (see package directory) decide the tier of an authenticated caller, so an
// email unknown to the directory never reaches the provider on login.
//
// # Authorization
//
// Tiers are totally ordered: employee < manager < director < super_admin.
// Gate checks require membership in a tier set and answer 403. Hierarchical
// checks require the actor to be strictly senior to the target tier, and a
// super_admin is never a valid target. Missing or invalid credentials answer 401.
package iam
