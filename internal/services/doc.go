// Package services implements a client for the hosted Supabase backend.
//
// A single [Client] holds the project URL, the anonymous key and the optional admin session,
// and exposes the four backend subsystems:
//
//   - PostgREST tables: [Client.Select], [Client.Upsert], [Client.Delete], [Client.ActiveAdmin]
//   - GoTrue identity: [Client.SignInWithPassword], [Client.SendOTP], [Client.VerifyOTP],
//     [Client.User], [Client.RefreshSession], [Client.SignOut], [Client.ResetPasswordForEmail]
//   - Object storage: [Client.UploadObject], [Client.RemoveObjects], [Client.PublicURL]
//   - Realtime change stream: [Client.ConnectRealtime], [Realtime.Subscribe]
//
// # Authentication
//
// Every request carries the anonymous key in the apikey header. The Authorization bearer is the
// bound session access token when one is set with [Client.SetSession], otherwise the anonymous key.
// [Client.As] scopes a copy of the client to a specific access token, which the login flow uses to
// query the admins table with a temporary session.
//
// Session tokens use the [oauth2.Token] model through [Session.Token]. [Client.RefreshSession]
// exchanges a refresh token with the refresh_token grant.
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which unwraps to [shared.ErrAPIRequest].
// Single-row PostgREST reads that match nothing return [shared.ErrNotFound].
package services
