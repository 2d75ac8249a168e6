package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erp/orderdesk/internal/application/desk"
	"github.com/erp/orderdesk/internal/domain/report"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/erp/orderdesk/internal/infrastructure/notify"
	"github.com/erp/orderdesk/internal/infrastructure/remote"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// usageError is a malformed command line
type usageError string

func (e usageError) Error() string { return string(e) }

// dashboardArchive keeps dashboard snapshots in object storage
type dashboardArchive interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

type cli struct {
	desk    *desk.Desk
	client  *remote.Client
	cache   *cache.QueryCache
	archive dashboardArchive // nil when storage is disabled
	out     io.Writer
}

var amounts = message.NewPrinter(language.English)

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "orders":
		return c.listOrders(ctx, args)
	case "show":
		return c.showOrder(ctx, args)
	case "fulfill":
		return c.fulfill(ctx, args)
	case "edit":
		return c.editOrder(ctx, args)
	case "place":
		return c.placeOrder(ctx, args)
	case "cancel":
		return c.cancelOrder(ctx, args)
	case "dashboard":
		return c.dashboard(ctx, args)
	}
	return usageError(fmt.Sprintf("unknown command %q", command))
}

func (c *cli) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	var q remote.OrderQuery
	fs.StringVar(&q.Kind, "kind", "", "PURCHASE or SALE")
	fs.StringVar(&q.Status, "status", "", "Order status")
	fs.StringVar(&q.Search, "search", "", "Order number or counterparty")
	fs.IntVar(&q.Page, "page", 1, "Page number")
	fs.IntVar(&q.PageSize, "page-size", 20, "Orders per page")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	page, err := c.desk.ListOrders(ctx, q)
	if err != nil {
		fmt.Fprintln(c.out, remote.ErrorMessage(err))
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tKIND\tSTATUS\tCOUNTERPARTY\tTOTAL")
	for _, o := range page.Items {
		amounts.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			o.ID, o.OrderNumber, o.Kind, o.Status, o.CounterpartyName, o.TotalAmount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "page %d of %d (%d orders)\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	return nil
}

func (c *cli) showOrder(ctx context.Context, args []string) error {
	id, err := orderArg("show", args)
	if err != nil {
		return err
	}
	view, err := c.desk.LoadOrder(ctx, id)
	if err != nil {
		fmt.Fprintln(c.out, remote.ErrorMessage(err))
		return err
	}
	return writeOrderView(c.out, view)
}

func writeOrderView(w io.Writer, view *desk.OrderView) error {
	o := view.Order
	fmt.Fprintf(w, "%s %s  %s  %s\n", o.Kind, o.OrderNumber, o.Status, o.CounterpartyName)
	if o.Description != "" {
		fmt.Fprintln(w, o.Description)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "LINE\tSKU\tPRODUCT\tORDERED\t%s\tREMAINING\tAMOUNT\n",
		strings.ToUpper(o.Kind.FulfillmentName()))
	for _, l := range view.Lines {
		amounts.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			l.LineID, l.SKU, l.Product, l.Ordered, l.Fulfilled, l.Remainder, l.Amount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	amounts.Fprintf(w, "total %d, outstanding %d, %s%% done\n",
		view.Total, view.Outstanding, view.Progress.StringFixed(0))
	return nil
}

func (c *cli) fulfill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fulfill", flag.ContinueOnError)
	var (
		lineID      uuidFlag
		warehouseID uuidFlag
		quantity    int64
		note        string
	)
	fs.Var(&lineID, "line", "Order line ID")
	fs.Var(&warehouseID, "warehouse", "Warehouse ID")
	fs.Int64Var(&quantity, "qty", 0, "Quantity received or delivered")
	fs.StringVar(&note, "note", "", "Free text note")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	id, err := orderArg("fulfill", fs.Args())
	if err != nil {
		return err
	}

	result, err := c.desk.SubmitFulfillment(ctx, id, trade.FulfillmentRequest{
		LineID:      uuid.UUID(lineID),
		WarehouseID: uuid.UUID(warehouseID),
		Quantity:    quantity,
		Note:        note,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "recorded %s, order is %s\n", result.Fulfillment.ID, result.OrderStatus)
	return nil
}

func (c *cli) editOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	quantities := lineQuantities{}
	var description string
	fs.Var(quantities, "set", "New quantity of a line as <line-id>=<qty>, repeatable")
	fs.StringVar(&description, "description", "", "New order description")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	id, err := orderArg("edit", fs.Args())
	if err != nil {
		return err
	}

	draft, err := c.desk.EditOrder(ctx, id)
	if err != nil {
		fmt.Fprintln(c.out, remote.ErrorMessage(err))
		return err
	}

	for lineID, qty := range quantities {
		if err := draft.SetQuantity(lineID, qty); err != nil {
			fmt.Fprintf(c.out, "line %s: %s\n", lineID, remote.ErrorMessage(err))
			return err
		}
	}
	if flagSet(fs, "description") {
		if err := draft.SetDescription(description); err != nil {
			fmt.Fprintln(c.out, remote.ErrorMessage(err))
			return err
		}
	}
	if !draft.IsDirty() {
		fmt.Fprintln(c.out, "nothing to save")
		return nil
	}

	view, err := c.desk.SaveDraft(ctx, draft)
	if err != nil {
		var fieldErrs shared.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeFieldErrors(c.out, fieldErrs)
		}
		return err
	}
	return writeOrderView(c.out, view)
}

func (c *cli) placeOrder(ctx context.Context, args []string) error {
	id, err := orderArg("place", args)
	if err != nil {
		return err
	}
	order, err := c.desk.PlaceOrder(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is %s\n", order.OrderNumber, order.Status)
	return nil
}

func (c *cli) cancelOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	reason := fs.String("reason", "", "Cancellation reason")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	id, err := orderArg("cancel", fs.Args())
	if err != nil {
		return err
	}
	order, err := c.desk.CancelOrder(ctx, id, *reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is %s\n", order.OrderNumber, order.Status)
	return nil
}

func (c *cli) dashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	var from, to dateFlag
	fs.Var(&from, "from", "First day, inclusive (YYYY-MM-DD)")
	fs.Var(&to, "to", "Last day, exclusive (YYYY-MM-DD)")
	top := fs.Int("top", 5, "Number of top products")
	archive := fs.Bool("archive", false, "Upload the snapshot to object storage")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *archive && c.archive == nil {
		return usageError("-archive needs storage.enabled in the config")
	}

	query := fmt.Sprintf("from=%s&to=%s&top=%d", from.String(), to.String(), *top)
	d, err := cache.Fetch(ctx, c.cache, cache.ListKey(cache.ResourceDashboard, query),
		func(ctx context.Context) (*report.SalesDashboard, error) {
			return c.client.GetSalesDashboard(ctx, time.Time(from), time.Time(to), *top)
		})
	if err != nil {
		fmt.Fprintln(c.out, remote.ErrorMessage(err))
		return err
	}
	if err := writeDashboard(c.out, d); err != nil {
		return err
	}
	if *archive {
		return c.archiveDashboard(ctx, d, *top)
	}
	return nil
}

func (c *cli) archiveDashboard(ctx context.Context, d *report.SalesDashboard, top int) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := c.archive.EnsureBucket(ctx); err != nil {
		return err
	}
	key, err := c.archive.Put(ctx, dashboardObjectName(d, top), data, "application/json")
	if err != nil {
		return err
	}
	link, expiresAt, err := c.archive.DownloadURL(ctx, key, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "archived %s (link valid until %s)\n%s\n", key, expiresAt.Format(time.RFC3339), link)
	return nil
}

func dashboardObjectName(d *report.SalesDashboard, top int) string {
	return fmt.Sprintf("sales_%s_%s_top%d.json", d.From.Format(time.DateOnly), d.To.Format(time.DateOnly), top)
}

func writeDashboard(w io.Writer, d *report.SalesDashboard) error {
	fmt.Fprintf(w, "sales %s to %s\n", d.From.Format(time.DateOnly), d.To.Format(time.DateOnly))
	amounts.Fprintf(w, "orders %d, total %d, outstanding %d, delivered %d, average %s\n",
		d.OrderCount, d.TotalAmount, d.OutstandingAmount, d.DeliveredQuantity, d.AverageOrderValue.StringFixed(2))

	if len(d.TopProducts) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSKU\tPRODUCT\tQTY\tAMOUNT")
	for _, p := range d.TopProducts {
		amounts.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", p.Rank, p.SKU, p.ProductName, p.Quantity, p.Amount)
	}
	return tw.Flush()
}

// printNotifications writes every desk notification to w until the
// notifier is closed. The returned channel is closed once it has drained.
func printNotifications(n *notify.Notifier, w io.Writer) (<-chan struct{}, error) {
	ch, err := n.Subscribe()
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for note := range ch {
			fmt.Fprintf(w, "[%s] %s\n", note.Level, note.Message)
		}
	}()
	return done, nil
}

func writeFieldErrors(w io.Writer, errs shared.FieldErrors) {
	for _, field := range errs.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", field, errs[field])
	}
}

func orderArg(command string, args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, usageError(fmt.Sprintf("usage: deskctl %s <order-id>", command))
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, usageError(fmt.Sprintf("invalid order id %q", args[0]))
	}
	return id, nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

type uuidFlag uuid.UUID

func (f *uuidFlag) String() string { return uuid.UUID(*f).String() }

func (f *uuidFlag) Set(s string) error {
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*f = uuidFlag(id)
	return nil
}

type dateFlag time.Time

func (f *dateFlag) String() string {
	if time.Time(*f).IsZero() {
		return ""
	}
	return time.Time(*f).Format(time.DateOnly)
}

func (f *dateFlag) Set(s string) error {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	*f = dateFlag(t)
	return nil
}

// lineQuantities collects repeated -set <line-id>=<qty> flags
type lineQuantities map[uuid.UUID]int64

func (l lineQuantities) String() string {
	parts := make([]string, 0, len(l))
	for id, qty := range l {
		parts = append(parts, id.String()+"="+strconv.FormatInt(qty, 10))
	}
	return strings.Join(parts, ",")
}

func (l lineQuantities) Set(s string) error {
	idPart, qtyPart, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected <line-id>=<qty>, got %q", s)
	}
	id, err := uuid.Parse(strings.TrimSpace(idPart))
	if err != nil {
		return fmt.Errorf("invalid line id %q", idPart)
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(qtyPart), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %q", qtyPart)
	}
	l[id] = qty
	return nil
}
