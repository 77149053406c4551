package client

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/otto/pkg/structs"
)

func TestSetQueryString(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *structs.Query
		Expect string
	}{
		{
			Name:   "NilQuery",
			Given:  nil,
			Expect: "limit=1000",
		},
		{
			Name:   "EmptyQuery",
			Given:  &structs.Query{},
			Expect: "limit=1000",
		},
		{
			Name: "Filters",
			Given: &structs.Query{
				Limit:    5,
				Offset:   10,
				JobIDs:   []string{"a", "b"},
				Statuses: []structs.Status{structs.RUNNING},
			},
			Expect: "job_ids=a&job_ids=b&limit=5&offset=10&statuses=RUNNING",
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			u := &url.URL{Scheme: "http", Host: "localhost", Path: "/v1/jobs"}

			setQueryString(u, c.Given)

			assert.Equal(t, c.Expect, u.RawQuery)
		})
	}
}
