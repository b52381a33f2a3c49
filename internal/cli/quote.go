package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/kart-orders/internal/app"
	"github.com/xenking/kart-orders/internal/domain/coupon"
	"github.com/xenking/kart-orders/internal/domain/order"
	"github.com/xenking/kart-orders/internal/report"
)

func newQuoteCmd() *cobra.Command {
	var (
		id          string
		email       string
		lines       []string
		discount    int
		couponCode  string
		couponsFile string
		expedited   bool
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a single order",
		Example: "  orderctl quote --email a@b.co --line WIDGET:2:1250 --line GADGET:1:999 --discount 10\n" +
			"  orderctl quote --email a@b.co --line WIDGET:1:1000 --coupon HAPPYHRS --coupons-file coupons.yaml",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed := make([]order.OrderLine, 0, len(lines))
			for _, raw := range lines {
				l, err := parseLineFlag(raw)
				if err != nil {
					return err
				}
				parsed = append(parsed, l)
			}

			coupons, err := app.LoadCoupons(couponsFile)
			if err != nil {
				return err
			}

			req := order.QuoteRequest{
				ID:            id,
				CustomerEmail: email,
				Lines:         parsed,
				CouponCode:    couponCode,
				Expedited:     expedited,
			}
			if cmd.Flags().Changed("discount") {
				req.DiscountPercent = order.NewOptInt(discount)
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = order.NewOptString(notes)
			}

			o, err := order.NewService(coupon.NewRepoValidator(coupons)).Quote(cmd.Context(), req)
			if err != nil {
				return errors.Wrap(err, "quote")
			}
			printQuote(cmd.OutOrStdout(), o)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Order id (random UUID when empty)")
	cmd.Flags().StringVar(&email, "email", "", "Customer email")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "Order line as SKU:QUANTITY:UNIT_PRICE_CENTS (repeatable)")
	cmd.Flags().IntVar(&discount, "discount", 0, "Discount percentage 0..100")
	cmd.Flags().StringVar(&couponCode, "coupon", "", "Coupon code resolved to a discount percentage")
	cmd.Flags().StringVar(&couponsFile, "coupons-file", "", "YAML file with accepted coupon codes")
	cmd.Flags().BoolVar(&expedited, "expedited", false, "Mark the order as expedited")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form order notes")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// parseLineFlag parses SKU:QUANTITY:UNIT_PRICE_CENTS. Range checks are left
// to the order builder.
func parseLineFlag(raw string) (order.OrderLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return order.OrderLine{}, errors.Errorf("line %q: want SKU:QUANTITY:UNIT_PRICE_CENTS", raw)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return order.OrderLine{}, errors.Wrapf(err, "line %q: quantity", raw)
	}
	price, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return order.OrderLine{}, errors.Wrapf(err, "line %q: unit price", raw)
	}
	return order.NewOrderLine(parts[0], qty, price), nil
}

func printQuote(w io.Writer, o *order.Order) {
	fmt.Fprintf(w, "Order %s for %s\n", o.ID(), o.CustomerEmail())
	for _, l := range o.All() {
		fmt.Fprintf(w, "  %-16s %4d x %10s = %10s\n",
			l.SKU(), l.Quantity(), report.FormatCents(l.UnitPriceCents()), report.FormatCents(l.TotalCents()))
	}
	if o.Expedited() {
		fmt.Fprintln(w, "Expedited: yes")
	}
	if notes, ok := o.Notes().Get(); ok {
		fmt.Fprintf(w, "Notes: %s\n", notes)
	}
	fmt.Fprintf(w, "Total before discount: %s\n", report.FormatCents(o.TotalBeforeDiscount()))
	if pct, ok := o.DiscountPercent().Get(); ok {
		fmt.Fprintf(w, "Discount (%d%%): %s\n", pct, report.FormatCents(o.DiscountAmount()))
	}
	fmt.Fprintf(w, "Total after discount: %s\n", report.FormatCents(o.TotalAfterDiscount()))
}
