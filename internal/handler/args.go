package handler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/service"
	"github.com/shopspring/decimal"
)

// command is a parsed multi-line command message:
//
//	/newoffer
//	title: Diwali Sweets Box
//	price: 500
//	discount: 20
//
// Args holds the words after the command on the first line, Fields the
// "key: value" lines below it.
type command struct {
	Args   []string
	Fields map[string]string
}

func parseCommand(text string) command {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	head := strings.Fields(lines[0])
	cmd := command{Fields: map[string]string{}}
	if len(head) > 1 {
		cmd.Args = head[1:]
	}

	last := ""
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if ok && key != "" && !strings.Contains(key, " ") {
			cmd.Fields[key] = strings.TrimSpace(value)
			last = key
			continue
		}
		// Continuation of a multi-line value such as a description.
		if last != "" {
			cmd.Fields[last] += "\n" + strings.TrimSpace(line)
		}
	}
	return cmd
}

func (c command) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

func (c command) unknownField(known ...string) string {
	for k := range c.Fields {
		if !slices.Contains(known, k) {
			return k
		}
	}
	return ""
}

var offerFields = []string{
	"title", "description", "category", "district", "city", "location",
	"price", "discount", "expiry", "mode", "listing", "image",
}

// offerInput builds an offer from command fields.
func (c command) offerInput() (domain.OfferInput, error) {
	if k := c.unknownField(offerFields...); k != "" {
		return domain.OfferInput{}, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidOffer, k)
	}
	f := c.Fields
	in := domain.OfferInput{
		Title:          f["title"],
		Description:    f["description"],
		Category:       strings.ToLower(f["category"]),
		District:       f["district"],
		City:           f["city"],
		Location:       f["location"],
		RedemptionMode: domain.RedemptionMode(strings.ToLower(f["mode"])),
		ListingType:    domain.ListingType(strings.ToLower(f["listing"])),
		ImageURL:       f["image"],
	}

	price, err := decimal.NewFromString(strings.TrimPrefix(f["price"], "₹"))
	if err != nil {
		return in, fmt.Errorf("%w: price must be a number", domain.ErrInvalidOffer)
	}
	in.OriginalPrice = price

	discount, err := strconv.Atoi(strings.TrimSuffix(f["discount"], "%"))
	if err != nil {
		return in, fmt.Errorf("%w: discount must be a whole number", domain.ErrInvalidOffer)
	}
	in.DiscountPercentage = discount

	expiry, err := parseDate(f["expiry"])
	if err != nil {
		return in, fmt.Errorf("%w: expiry must look like 2026-12-31", domain.ErrInvalidOffer)
	}
	in.ExpiryDate = expiry

	return in, nil
}

var rewardFields = []string{"title", "description", "points", "max", "expiry"}

func (c command) rewardInput() (service.RewardOfferInput, error) {
	if k := c.unknownField(rewardFields...); k != "" {
		return service.RewardOfferInput{}, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidReward, k)
	}
	f := c.Fields
	in := service.RewardOfferInput{
		Title:       f["title"],
		Description: f["description"],
	}

	points, err := strconv.ParseInt(f["points"], 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: points must be a whole number", domain.ErrInvalidReward)
	}
	in.PointsRequired = points

	if v := f["max"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("%w: max must be a whole number", domain.ErrInvalidReward)
		}
		in.MaxRedemptions = &n
	}
	if v := f["expiry"]; v != "" {
		t, err := parseDate(v)
		if err != nil {
			return in, fmt.Errorf("%w: expiry must look like 2026-12-31", domain.ErrInvalidReward)
		}
		in.ExpiryDate = &t
	}
	return in, nil
}

var merchantFields = []string{"store", "name", "location", "district", "city", "plan", "premium"}

func (c command) merchantInput(telegramID int64) (service.MerchantInput, error) {
	if k := c.unknownField(merchantFields...); k != "" {
		return service.MerchantInput{}, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidProfile, k)
	}
	f := c.Fields
	plan, err := domain.ParsePlan(f["plan"])
	if err != nil {
		return service.MerchantInput{}, fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}
	return service.MerchantInput{
		TelegramID:    telegramID,
		Name:          f["name"],
		StoreName:     f["store"],
		StoreLocation: f["location"],
		District:      f["district"],
		City:          f["city"],
		Plan:          plan,
		IsPremium:     parseBool(f["premium"]),
	}, nil
}

// parseDate accepts a calendar date, meaning the end of that day in UTC, or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Add(24*time.Hour - time.Second), nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "premium":
		return true
	}
	return false
}

// browseFilter reads "/offers [category] [district] [search...]". The
// category and district are recognised by value, so either may be omitted.
func browseFilter(args []string) domain.OfferFilter {
	var f domain.OfferFilter
	if len(args) > 0 {
		if a := strings.ToLower(args[0]); a == domain.CategoryAll || slices.Contains(domain.Categories, a) {
			f.Category = a
			args = args[1:]
		}
	}
	if len(args) > 0 {
		if _, ok := domain.Districts[strings.ToLower(args[0])]; ok {
			f.District = strings.ToLower(args[0])
			args = args[1:]
		}
	}
	f.Search = strings.Join(args, " ")
	return f
}

// callbackID splits "prefix:uuid" callback data.
func callbackID(data string) (string, uuid.UUID, error) {
	prefix, raw, ok := strings.Cut(data, ":")
	if !ok {
		return "", uuid.Nil, fmt.Errorf("malformed callback %q", data)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("parse callback id: %w", err)
	}
	return prefix, id, nil
}

const maxCallbackData = 64

// offersPageData encodes a browse page and its filter as callback data,
// shortening the search text to fit the Telegram limit.
func offersPageData(page int, f domain.OfferFilter) string {
	data := fmt.Sprintf("%s:%d:%s:%s:", cbOffersPage, page, f.Category, f.District)
	search := []rune(f.Search)
	room := maxCallbackData - len(data)
	for len(search) > 0 && len(string(search)) > room {
		search = search[:len(search)-1]
	}
	return data + string(search)
}

func parseOffersPageData(data string) (int, domain.OfferFilter, error) {
	parts := strings.SplitN(data, ":", 5)
	if len(parts) != 5 || parts[0] != cbOffersPage {
		return 0, domain.OfferFilter{}, fmt.Errorf("malformed page callback %q", data)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 0 {
		return 0, domain.OfferFilter{}, fmt.Errorf("malformed page callback %q", data)
	}
	return page, domain.OfferFilter{Category: parts[2], District: parts[3], Search: parts[4]}, nil
}
