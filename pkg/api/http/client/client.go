package client

import (
	"net/url"

	"github.com/voidshard/otto/pkg/api/http/common"
	"github.com/voidshard/otto/pkg/structs"
)

// Client talks to a Server over HTTP.
type Client struct {
	url *url.URL
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u}, err
}

// CreateJob submits a job whose script already exists on a path the worker
// can read.
func (c *Client) CreateJob(spec *structs.JobSpec) (*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	var out structs.Job
	return &out, genericPost(addr, spec, &out)
}

// UploadScript submits a job by uploading the script body itself; the server
// stores it and fills in the script path.
func (c *Client) UploadScript(name, userID, filename string, script []byte) (*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	var out structs.Job
	return &out, multipartPost(addr, name, userID, filename, script, &out)
}

func (c *Client) Jobs(q *structs.Query) ([]*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	setQueryString(addr, q)
	var out []*structs.Job
	return out, genericGet(addr, &out)
}

func (c *Client) Cancel(ids []string) (int64, error) {
	addr := c.addr(common.API_CANCEL)
	var out common.UpdateResponse
	return out.Updated, genericPatch(addr, ids, &out)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
