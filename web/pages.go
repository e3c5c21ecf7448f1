/* pages.go
 * Contains the view models rendered by the components in pages.templ: the page layout, the resource table with its
 * search box and pagination, and the form modal
 */

//go:generate templ generate

package web

import (
	"net/url"
	"strconv"

	"torneos-admin/api/forms"
	"torneos-admin/api/notify"
)

// navItem is a resource link in the side menu
type navItem struct {
	Name  string
	Title string
}

// layoutData is shared by every page
type layoutData struct {
	Title   string
	Nav     []navItem
	Current string
	User    string // empty when logged out
	Notice  *notify.Notice
}

// row is one table line: the record id and its formatted cells
type row struct {
	ID    int64
	Cells []string
}

// listView is the content of a resource page
type listView struct {
	Resource string
	Title    string
	Columns  []string
	Rows     []row
	Search   string
	Page     int
	Limit    int
	Total    int
	Error    string
	Form     *forms.Form // non nil when the modal is open
}

func (v listView) pages() int {
	if v.Limit <= 0 || v.Total <= 0 {
		return 1
	}
	return (v.Total + v.Limit - 1) / v.Limit
}

func (v listView) pageURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(v.Limit))
	if v.Search != "" {
		q.Set("q", v.Search)
	}
	return "/admin/" + v.Resource + "?" + q.Encode()
}

func (v listView) editURL(id int64) string {
	return "/admin/" + v.Resource + "?edit=" + strconv.FormatInt(id, 10)
}

func (v listView) deleteURL(id int64) string {
	return "/admin/" + v.Resource + "/" + strconv.FormatInt(id, 10) + "/delete"
}
