package views

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/apitest"
	"github.com/dmitrymomot/eventmail/modules/attendees"
	"github.com/dmitrymomot/eventmail/modules/auth"
	"github.com/dmitrymomot/eventmail/modules/campaign"
	"github.com/dmitrymomot/eventmail/modules/dashboard"
	"github.com/dmitrymomot/eventmail/modules/sheets"
	"github.com/dmitrymomot/eventmail/modules/templates"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
)

func Dashboard() dashboard.Views {
	return dashboard.Views{
		Page: func(p dashboard.PageParams) templ.Component {
			return page("Dashboard", partial("dashboard/page", p))
		},
		Stats: func(p dashboard.StatsParams) templ.Component {
			return partial("dashboard/stats", p)
		},
	}
}

func Attendees() attendees.Views {
	return attendees.Views{
		Page: func(p attendees.PageParams) templ.Component {
			return page("Attendees", partial("attendees/page", p))
		},
		List: func(p attendees.ListParams) templ.Component {
			return partial("attendees/list", p)
		},
		Form: func(p attendees.FormParams) templ.Component {
			return partial("attendees/form", p)
		},
	}
}

func Templates() templates.Views {
	return templates.Views{
		Page: func(p templates.PageParams) templ.Component {
			return page("Templates", partial("templates/page", p))
		},
		List: func(p templates.ListParams) templ.Component {
			return partial("templates/list", p)
		},
		Detail: func(p templates.DetailParams) templ.Component {
			return partial("templates/detail", p)
		},
		Preview: func(p templates.PreviewParams) templ.Component {
			return partial("templates/preview", p)
		},
		Form: func(p templates.FormParams) templ.Component {
			return partial("templates/form", p)
		},
	}
}

func Campaign() campaign.Views {
	return campaign.Views{
		Page: func(p campaign.PageParams) templ.Component {
			return page("Campaign", partial("campaign/page", p))
		},
		Recipients: func(p campaign.RecipientsParams) templ.Component {
			return partial("campaign/recipients", p)
		},
		Preview: func(p campaign.PreviewParams) templ.Component {
			return partial("campaign/preview", p)
		},
		Results: func(p campaign.ResultsParams) templ.Component {
			return partial("campaign/results", p)
		},
	}
}

// stepView flattens the wizard step for the template, which cannot switch
// on types.
type stepView struct {
	Input     *sheetimport.Input
	Preview   *sheetimport.Preview
	Importing *sheetimport.Importing
	Complete  *sheetimport.Complete
	Rate      int
	Sample    []apiclient.Attendee
}

func newStepView(p sheets.StepParams) stepView {
	v := stepView{Sample: p.Sample}
	switch st := p.Step.(type) {
	case sheetimport.Input:
		v.Input = &st
	case sheetimport.Preview:
		v.Preview = &st
	case sheetimport.Importing:
		v.Importing = &st
	case sheetimport.Complete:
		v.Complete = &st
		v.Rate = st.SuccessRate()
	default:
		v.Input = &sheetimport.Input{}
	}
	return v
}

func Sheets() sheets.Views {
	return sheets.Views{
		Page: func(p sheets.PageParams) templ.Component {
			return page("Google Sheets", partial("sheets/page", newStepView(p.Step)))
		},
		Step: func(p sheets.StepParams) templ.Component {
			return partial("sheets/step", newStepView(p))
		},
	}
}

func APITest() apitest.Views {
	return apitest.Views{
		Page: func(p apitest.PageParams) templ.Component {
			return page("API Test", partial("apitest/page", p))
		},
		Results: func(p apitest.ResultsParams) templ.Component {
			return partial("apitest/results", p)
		},
	}
}

func Auth() auth.Views {
	return auth.Views{
		LoginPage: func(p auth.LoginPageParams) templ.Component {
			return page("Sign in", partial("auth/login", p))
		},
		LoginForm: func(p auth.LoginFormParams) templ.Component {
			return partial("auth/form", p)
		},
		Badge: func(p auth.BadgeParams) templ.Component {
			return partial("auth/badge", p)
		},
	}
}

// ErrorHandlerConfig wires the error page and toast into
// handler.NewErrorHandler.
func ErrorHandlerConfig() handler.ErrorHandlerConfig {
	return handler.ErrorHandlerConfig{
		ErrorPage: func(p handler.ErrorPageParams) templ.Component {
			return page("Error", partial("error/page", p))
		},
		ErrorToast: func(p handler.ErrorToastParams) templ.Component {
			return partial("error/toast", p)
		},
	}
}
