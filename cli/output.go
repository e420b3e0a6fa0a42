package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/internal/utils"
	"github.com/jrsteele09/go-inventory-ui/users"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func writeUsers(out io.Writer, list []users.User) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No users found.")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tROLES\tSTATUS")
	for _, u := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.UserID, u.Username, strings.TrimSpace(u.FirstName+" "+u.LastName), u.Email, roleLabels(u.Roles), userStatus(u))
	}
	return tw.Flush()
}

func writeUser(out io.Writer, u *users.User) error {
	tw := newTable(out)
	fmt.Fprintf(tw, "ID:\t%d\n", u.UserID)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "Name:\t%s\n", strings.TrimSpace(u.FirstName+" "+u.LastName))
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Roles:\t%s\n", roleLabels(u.Roles))
	fmt.Fprintf(tw, "Status:\t%s\n", userStatus(*u))
	if companyID := utils.Value(u.CompanyID); companyID != 0 {
		fmt.Fprintf(tw, "Company:\t%d\n", companyID)
	}
	return tw.Flush()
}

func writeCompanies(out io.Writer, list []companies.Company) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No companies found.")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tWEBSITE")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.Website)
	}
	return tw.Flush()
}

func writeCompany(out io.Writer, c *companies.Company) error {
	tw := newTable(out)
	fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", c.Email)
	fmt.Fprintf(tw, "Phone:\t%s\n", c.Phone)
	fmt.Fprintf(tw, "Address:\t%s\n", c.Address)
	fmt.Fprintf(tw, "Website:\t%s\n", c.Website)
	fmt.Fprintf(tw, "Image:\t%s\n", c.Image)
	return tw.Flush()
}

func roleLabels(roles []string) string {
	labels := make([]string, len(roles))
	for i, role := range roles {
		labels[i] = users.RoleLabel(role)
	}
	return strings.Join(labels, ",")
}

func userStatus(u users.User) string {
	var status []string
	if u.Locked() {
		status = append(status, "locked")
	}
	if !u.Enabled {
		status = append(status, "disabled")
	}
	if len(status) == 0 {
		return "active"
	}
	return strings.Join(status, ",")
}

// parseID reads a positive record id argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
