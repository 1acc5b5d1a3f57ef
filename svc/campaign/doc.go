// Package campaign builds bulk email sends from a template, an event
// configuration and a type-filtered set of attendees.
//
// Recipients are chosen with a Selection: either the "all" meta-filter or a
// set of specific attendee types, never both.
//
//	sel := campaign.ParseSelection(r.Form["types"])
//	recipients := campaign.Filter(attendees, sel)
//	res, err := sender.Send(ctx, client, tpl, cfg, recipients)
//
// Sending goes through the backend, which runs in test mode in this
// deployment, so no email leaves the system.
package campaign
