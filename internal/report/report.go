// Package report prints the Geolife question set as console tables.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/service"
)

type question struct {
	title string
	run   func(r *Reporter, ctx context.Context) error
}

var questions = map[int]question{
	1:  {"Users, activities and trackpoints", (*Reporter).counts},
	2:  {"Average activities per user", (*Reporter).average},
	3:  {"Top 20 users by activities", (*Reporter).topUsers},
	4:  {"Users who have taken a taxi", (*Reporter).taxiUsers},
	5:  {"Activities per transportation mode", (*Reporter).modes},
	6:  {"Busiest year", (*Reporter).busiestYear},
	7:  {"Distance walked by user 112 in 2008", (*Reporter).distance},
	8:  {"Top 20 users by altitude gained", (*Reporter).altitude},
	9:  {"Users with invalid activities", (*Reporter).invalid},
	10: {"Users near the Forbidden City", (*Reporter).nearby},
	11: {"Most used transportation mode per user", (*Reporter).mostUsedModes},
}

// Questions returns the question numbers in order
func Questions() []int {
	ids := make([]int, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ParseOnly parses a comma separated list of question numbers; an empty
// list selects every question
func ParseOnly(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return Questions(), nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid question %q: %w", part, err)
		}
		if _, ok := questions[id]; !ok {
			return nil, fmt.Errorf("unknown question %d", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Reporter answers questions against a stats service
type Reporter struct {
	svc *service.StatsService
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(svc *service.StatsService, out io.Writer) *Reporter {
	return &Reporter{svc: svc, out: out}
}

// Run prints the answers to the given questions in order. A question with
// no data prints a notice instead of failing the run.
func (r *Reporter) Run(ctx context.Context, ids []int) error {
	for _, id := range ids {
		q, ok := questions[id]
		if !ok {
			return fmt.Errorf("unknown question %d", id)
		}
		fmt.Fprintf(r.out, "\n%d. %s\n", id, q.title)

		err := q.run(r, ctx)
		if errors.Is(err, service.ErrNoData) {
			fmt.Fprintln(r.out, "no data")
			continue
		}
		if err != nil {
			return fmt.Errorf("question %d: %w", id, err)
		}
	}
	return nil
}

func (r *Reporter) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(r.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func (r *Reporter) counts(ctx context.Context) error {
	c, err := r.svc.Counts(ctx)
	if err != nil {
		return err
	}
	t := r.table("Collection", "Documents")
	t.Append([]string{models.CollectionUser, strconv.FormatInt(c.Users, 10)})
	t.Append([]string{models.CollectionActivity, strconv.FormatInt(c.Activities, 10)})
	t.Append([]string{models.CollectionTrackPoint, strconv.FormatInt(c.TrackPoints, 10)})
	t.Render()
	return nil
}

func (r *Reporter) average(ctx context.Context) error {
	avg, err := r.svc.AverageActivitiesPerUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%.2f activities per user\n", avg)
	return nil
}

func (r *Reporter) topUsers(ctx context.Context) error {
	top, err := r.svc.TopUsersByActivityCount(ctx, service.DefaultLimit)
	if err != nil {
		return err
	}
	t := r.table("User", "Activities")
	for _, u := range top {
		t.Append([]string{u.UserID, strconv.FormatInt(u.Activities, 10)})
	}
	t.Render()
	return nil
}

func (r *Reporter) taxiUsers(ctx context.Context) error {
	users, err := r.svc.UsersWhoTookMode(ctx, service.DefaultMode)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d users: %s\n", len(users), strings.Join(users, ", "))
	return nil
}

func (r *Reporter) modes(ctx context.Context) error {
	modes, err := r.svc.ModeCounts(ctx)
	if err != nil {
		return err
	}
	t := r.table("Mode", "Activities")
	for _, m := range modes {
		t.Append([]string{m.Mode, strconv.FormatInt(m.Activities, 10)})
	}
	t.Render()
	return nil
}

func (r *Reporter) busiestYear(ctx context.Context) error {
	b, err := r.svc.BusiestYear(ctx)
	if err != nil {
		return err
	}
	t := r.table("Measure", "Year", "Value")
	t.Append([]string{"activities", strconv.Itoa(b.ByActivities.Year), strconv.FormatInt(b.ByActivities.Activities, 10)})
	t.Append([]string{"hours", strconv.Itoa(b.ByHours.Year), strconv.FormatFloat(b.ByHours.Hours, 'f', 1, 64)})
	t.Render()
	if b.Agree {
		fmt.Fprintln(r.out, "The year with most activities also has most recorded hours")
	} else {
		fmt.Fprintln(r.out, "The year with most activities does not have most recorded hours")
	}
	return nil
}

func (r *Reporter) distance(ctx context.Context) error {
	d, err := r.svc.DistanceWalked(ctx, service.DefaultDistanceUser, service.DefaultDistanceMode, service.DefaultDistanceYear)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "User %s covered %.2f km by %s in %d over %d activities\n",
		d.UserID, d.Kilometers(), d.Mode, d.Year, d.Activities)
	return nil
}

func (r *Reporter) altitude(ctx context.Context) error {
	gains, err := r.svc.TopAltitudeGain(ctx, service.DefaultLimit)
	if err != nil {
		return err
	}
	t := r.table("User", "Meters gained")
	for _, g := range gains {
		t.Append([]string{g.UserID, strconv.FormatFloat(g.Meters, 'f', 1, 64)})
	}
	t.Render()
	return nil
}

func (r *Reporter) invalid(ctx context.Context) error {
	invalid, err := r.svc.InvalidActivities(ctx)
	if err != nil {
		return err
	}
	t := r.table("User", "Invalid activities")
	for _, u := range invalid {
		t.Append([]string{u.UserID, strconv.Itoa(u.Invalid)})
	}
	t.Render()
	return nil
}

func (r *Reporter) nearby(ctx context.Context) error {
	near, err := r.svc.UsersNear(ctx, service.DefaultNearLatitude, service.DefaultNearLongitude, service.DefaultNearRadius, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d users within %.0f m of (%.3f, %.3f): %s\n",
		len(near.Users), near.Radius, near.Latitude, near.Longitude, strings.Join(near.Users, ", "))
	return nil
}

func (r *Reporter) mostUsedModes(ctx context.Context) error {
	modes, err := r.svc.MostUsedModes(ctx)
	if err != nil {
		return err
	}
	t := r.table("User", "Mode", "Activities")
	for _, m := range modes {
		t.Append([]string{m.UserID, m.Mode, strconv.FormatInt(m.Activities, 10)})
	}
	t.Render()
	return nil
}
