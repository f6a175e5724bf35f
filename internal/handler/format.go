package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/telegram"
)

var listingBadges = map[domain.ListingType]string{
	domain.ListingHotOffers:  "🔥 Hot Offer",
	domain.ListingTrending:   "📈 Trending",
	domain.ListingLocalDeals: "📍 Local Deal",
}

var statusBadges = map[domain.OfferStatus]string{
	domain.OfferInReview: "🕓 In review",
	domain.OfferApproved: "✅ Approved",
	domain.OfferRejected: "❌ Rejected",
}

var redemptionBadges = map[domain.RedemptionStatus]string{
	domain.RedemptionPending:  "🕓 Pending",
	domain.RedemptionApproved: "✅ Approved",
	domain.RedemptionRejected: "❌ Rejected",
}

func rupees(d fmt.Stringer) string {
	return "₹" + d.String()
}

func place(o *domain.Offer) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Location, o.City, o.District} {
		if p != "" && !containsFold(parts, p) {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// offerCard renders an offer for customers. Merchant views add the
// moderation status and visibility.
func offerCard(o *domain.Offer, merchantView bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n*%s*\n\n", listingBadges[o.ListingType], telegram.EscapeMarkdown(o.Title))
	if o.Description != "" {
		sb.WriteString(telegram.EscapeMarkdown(o.Description) + "\n\n")
	}
	fmt.Fprintf(&sb, "💸 %s → *%s* (%d%% off)\n", rupees(o.OriginalPrice), rupees(o.DiscountedPrice), o.DiscountPercentage)
	if p := place(o); p != "" {
		fmt.Fprintf(&sb, "📍 %s\n", telegram.EscapeMarkdown(p))
	}
	fmt.Fprintf(&sb, "🛒 %s · ⏰ until %s", redemptionModeLabel(o.RedemptionMode), o.ExpiryDate.Format("02 Jan 2006"))
	if merchantView {
		active := "👁 Visible when approved"
		if !o.IsActive {
			active = "🙈 Hidden"
		}
		fmt.Fprintf(&sb, "\n\n%s · %s\n🆔 `%s`", statusBadges[o.Status], active, o.ID)
	}
	return sb.String()
}

func redemptionModeLabel(m domain.RedemptionMode) string {
	switch m {
	case domain.ModeOnline:
		return "Online"
	case domain.ModeStore:
		return "In store"
	default:
		return "Online or in store"
	}
}

func customerOfferKeyboard(o *domain.Offer) *models.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.ButtonRow(
		telegram.InlineButton("🔖 Save", cbSave+":"+o.ID.String()),
		telegram.InlineButton("🎫 Redeem", cbRedeem+":"+o.ID.String()),
	))
}

func merchantOfferKeyboard(o *domain.Offer) *models.InlineKeyboardMarkup {
	label := "🙈 Hide"
	if !o.IsActive {
		label = "👁 Show"
	}
	return telegram.InlineKeyboard(telegram.ButtonRow(
		telegram.InlineButton(label, cbToggleOffer+":"+o.ID.String()),
	))
}

func reviewKeyboard(o *domain.Offer) *models.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.ButtonRow(
		telegram.InlineButton("✅ Approve", cbApproveOffer+":"+o.ID.String()),
		telegram.InlineButton("❌ Reject", cbRejectOffer+":"+o.ID.String()),
	))
}

func redemptionDecisionKeyboard(r *domain.Redemption) *models.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.ButtonRow(
		telegram.InlineButton("✅ Approve", cbApproveRedeem+":"+r.ID.String()),
		telegram.InlineButton("❌ Reject", cbRejectRedeem+":"+r.ID.String()),
	))
}

func redemptionLine(r *domain.Redemption) string {
	title := "offer"
	if r.Offer != nil {
		title = r.Offer.Title
	}
	return fmt.Sprintf("%s · *%s* · %s", redemptionBadges[r.Status], telegram.EscapeMarkdown(title), r.RedeemedAt.Format("02 Jan 15:04"))
}

func rewardSummaryText(head *domain.UserReward, history []domain.RewardActivity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 *%s member*\n\n💰 Balance: *%d* points\n📥 Earned: %d\n📤 Spent: %d\n",
		head.LevelName, head.CurrentPoints, head.TotalEarnedPoints, head.TotalRedeemedPoints)
	if len(history) > 0 {
		sb.WriteString("\n*Recent activity*\n")
		for _, a := range history {
			fmt.Fprintf(&sb, "%s %+d · %s\n", a.CreatedAt.Format("02 Jan"), a.Points, telegram.EscapeMarkdown(activityLabel(a)))
		}
	}
	return sb.String()
}

func activityLabel(a domain.RewardActivity) string {
	if a.Description != "" {
		return a.Description
	}
	switch a.ActivityType {
	case domain.ActivityReferral:
		return "Referral bonus"
	case domain.ActivityQRScan:
		return "QR scan"
	case domain.ActivityRewardRedemption:
		return "Reward redeemed"
	default:
		return "Adjustment"
	}
}

func rewardOfferCard(r *domain.RewardOffer, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎁 *%s*\n⭐ %d points", telegram.EscapeMarkdown(r.Title), r.PointsRequired)
	if r.MaxRedemptions != nil {
		fmt.Fprintf(&sb, " · %d left", max(*r.MaxRedemptions-r.CurrentRedemptions, 0))
	}
	if r.ExpiryDate != nil && !r.Expired(now) {
		fmt.Fprintf(&sb, " · until %s", r.ExpiryDate.Format("02 Jan 2006"))
	}
	if r.Description != "" {
		sb.WriteString("\n" + telegram.EscapeMarkdown(r.Description))
	}
	return sb.String()
}

func statsText(s domain.MerchantStats, p *domain.Profile) string {
	return fmt.Sprintf(
		"📊 *%s*\n\n"+
			"⭐ Plan: %s (%d offers / month)\n\n"+
			"*Offers*\n🕓 In review: %d\n✅ Approved: %d\n❌ Rejected: %d\n👁 Active: %d\n\n"+
			"*Redemptions*\n🕓 Pending: %d\n✅ Approved: %d\n❌ Rejected: %d",
		telegram.EscapeMarkdown(p.DisplayName()),
		p.CurrentPlan.Label(), p.CurrentPlan.MonthlyOfferLimit(),
		s.OffersInReview, s.OffersApproved, s.OffersRejected, s.ActiveOffers,
		s.RedemptionsPending, s.RedemptionsApproved, s.RedemptionsRejected,
	)
}

func helpText(p *domain.Profile) string {
	text := "📋 *Commands*\n" +
		"/offers [category] [district] [search] - browse deals\n" +
		"/saved - your saved offers\n" +
		"/redemptions - your redemptions\n" +
		"/points - balance and history\n" +
		"/rewards - spend your points\n" +
		"/referral - invite friends\n"
	if p == nil {
		return text
	}
	text += domain.MatchRole(p.Role,
		func() string { return "" },
		func() string {
			return "\n🏪 *Merchant*\n" +
				"/myoffers - your offers\n" +
				"/newoffer - post an offer\n" +
				"/editoffer <id> - change an offer\n" +
				"/pending - redemptions to confirm\n" +
				"/stats - dashboard\n"
		},
		func() string {
			return "\n🛡 *Admin*\n" +
				"/review - offers awaiting moderation\n" +
				"/addmerchant <telegram id> - open a merchant account\n" +
				"/setplan <merchant id> <plan> [premium]\n" +
				"/adminoffer <merchant id> - post a pre-approved offer\n" +
				"/newreward - add a reward\n" +
				"/adjust <user id> <points> [reason]\n"
		},
	)
	return text
}

const offerTemplate = "title: Diwali Sweets Box\n" +
	"price: 500\n" +
	"discount: 20\n" +
	"expiry: 2026-12-31\n" +
	"category: food\n" +
	"district: chennai\n" +
	"city: Chennai\n" +
	"location: T. Nagar\n" +
	"mode: store | online | both\n" +
	"listing: local_deals | hot_offers | trending\n" +
	"image: https://...\n" +
	"description: Fresh sweets every morning"
