package policy

import (
	"fmt"
	"maps"
)

// CategoryID names a statically defined group of policies.
type CategoryID string

const (
	CategoryAI          CategoryID = "ai"
	CategoryPrivacy     CategoryID = "privacy"
	CategoryTelemetry   CategoryID = "telemetry"
	CategorySecurity    CategoryID = "security"
	CategoryAutofill    CategoryID = "autofill"
	CategorySync        CategoryID = "sync"
	CategoryPermissions CategoryID = "perms"
	CategoryBrave       CategoryID = "brave"
)

// Category is a named group of related policies toggled as a unit.
type Category struct {
	ID       CategoryID
	Tag      string
	Name     string
	Summary  string
	Help     string
	Policies map[string]Value
}

// basePolicies are written regardless of the selected categories.
var basePolicies = map[string]Value{
	"DnsOverHttpsMode":       String("automatic"),
	"HttpsUpgradesEnabled":   Bool(true),
	"PromotionalTabsEnabled": Bool(false),
}

// categories is in merge order. Later entries win on duplicate keys.
var categories = []Category{
	{
		ID:      CategoryAI,
		Tag:     "[AI]",
		Name:    "Disable AI Features",
		Summary: "Leo, Gemini, Lens, AI Writing",
		Help: "Disables all AI assistants including Leo (Brave's AI), Google Gemini integration, " +
			"Google Lens features, and AI-powered writing helpers.",
		Policies: map[string]Value{
			"BraveAIChatEnabled":                  Bool(false),
			"HelpMeWriteSettings":                 Int(2),
			"GeminiSettings":                      Int(1),
			"GenAiDefaultSettings":                Int(2),
			"GenAiLensOverlaySettings":            Int(2),
			"GenAILocalFoundationalModelSettings": Int(1),
			"LensRegionSearchEnabled":             Bool(false),
			"LensDesktopNTPSearchEnabled":         Bool(false),
			"LensOverlaySettings":                 Int(1),
		},
	},
	{
		ID:      CategoryPrivacy,
		Tag:     "[PRIV]",
		Name:    "Block Tracking",
		Summary: "Cookies, Fingerprinting, WebRTC",
		Help: "Blocks third-party cookies, enables fingerprinting protection, disables Privacy Sandbox, " +
			"and prevents WebRTC IP leaks.",
		Policies: map[string]Value{
			"BlockThirdPartyCookies":                        Bool(true),
			"PrivacySandboxFingerprintingProtectionEnabled": Bool(true),
			"PrivacySandboxPromptEnabled":                   Bool(false),
			"PrivacySandboxAdTopicsEnabled":                 Bool(false),
			"PrivacySandboxSiteEnabledAdsEnabled":           Bool(false),
			"PrivacySandboxAdMeasurementEnabled":            Bool(false),
			"WebRtcIPHandling":                              String("disable_non_proxied_udp"),
			"WebRtcEventLogCollectionAllowed":               Bool(false),
		},
	},
	{
		ID:      CategoryTelemetry,
		Tag:     "[TEL]",
		Name:    "Disable Telemetry",
		Summary: "Metrics, Reports, Feedback",
		Help: "Disables usage statistics, crash reports and feedback mechanisms. " +
			"No data is sent to Brave or Google.",
		Policies: map[string]Value{
			"MetricsReportingEnabled":                 Bool(false),
			"DeviceMetricsReportingEnabled":           Bool(false),
			"UrlKeyedAnonymizedDataCollectionEnabled": Bool(false),
			"UrlKeyedMetricsAllowed":                  Bool(false),
			"CloudProfileReportingEnabled":            Bool(false),
			"CloudReportingEnabled":                   Bool(false),
			"ReportExtensionsAndPluginsData":          Bool(false),
			"ReportMachineIDData":                     Bool(false),
			"ReportPolicyData":                        Bool(false),
			"ReportUserIDData":                        Bool(false),
			"ReportVersionData":                       Bool(false),
			"UserFeedbackAllowed":                     Bool(false),
			"FeedbackSurveysEnabled":                  Bool(false),
		},
	},
	{
		ID:      CategorySecurity,
		Tag:     "[SEC]",
		Name:    "Enhanced Security",
		Summary: "Safe Browsing, Updates",
		Help: "Enables Enhanced Safe Browsing (level 2) against phishing and malware. " +
			"Keeps component updates enabled for security patches.",
		Policies: map[string]Value{
			"SafeBrowsingProtectionLevel":          Int(2),
			"SafeBrowsingExtendedReportingEnabled": Bool(false),
			"SafeBrowsingSurveysEnabled":           Bool(false),
			"ComponentUpdatesEnabled":              Bool(true),
		},
	},
	{
		ID:      CategoryAutofill,
		Tag:     "[AUTO]",
		Name:    "Disable Autofill",
		Summary: "Passwords, Payments, Addresses",
		Help: "Disables the built-in password manager, credit card and address autofill. " +
			"Use a dedicated password manager instead.",
		Policies: map[string]Value{
			"PaymentMethodQueryEnabled":    Bool(false),
			"AutofillAddressEnabled":       Bool(false),
			"AutofillCreditCardEnabled":    Bool(false),
			"AutofillPredictionSettings":   Int(2),
			"PasswordManagerEnabled":       Bool(false),
			"PasswordLeakDetectionEnabled": Bool(false),
			"PasswordSharingEnabled":       Bool(false),
		},
	},
	{
		ID:      CategorySync,
		Tag:     "[SYNC]",
		Name:    "Disable Sync",
		Summary: "No Cloud, No Sign-in",
		Help:    "Prevents browser sync and sign-in. Browsing data stays local.",
		Policies: map[string]Value{
			"SyncDisabled":  Bool(true),
			"BrowserSignin": Int(0),
		},
	},
	{
		ID:      CategoryPermissions,
		Tag:     "[PERM]",
		Name:    "Block Permissions",
		Summary: "Location, Camera, Mic, Screen, USB",
		Help: "Blocks sensitive permissions by default. Sites cannot read your location, use the " +
			"camera or microphone, capture the screen, or reach hardware without explicit permission.",
		Policies: map[string]Value{
			"DefaultGeolocationSetting":          Int(2),
			"DefaultNotificationsSetting":        Int(2),
			"DefaultWebBluetoothGuardSetting":    Int(2),
			"DefaultWebUsbGuardSetting":          Int(2),
			"DefaultFileSystemReadGuardSetting":  Int(2),
			"DefaultFileSystemWriteGuardSetting": Int(2),
			"DefaultLocalFontsSetting":           Int(2),
			"DefaultSensorsSetting":              Int(2),
			"DefaultSerialGuardSetting":          Int(2),
			"DefaultCameraAccessAllowed":         Bool(false),
			"DefaultMicAccessAllowed":            Bool(false),
			"ScreenCaptureAllowed":               Bool(false),
			"AutoplayAllowed":                    Bool(false),
		},
	},
	{
		ID:      CategoryBrave,
		Tag:     "[BRAVE]",
		Name:    "Brave Specific",
		Summary: "Rewards, Wallet, VPN, Talk",
		Help:    "Disables Rewards/BAT, the crypto wallet, VPN promotions, Tor windows and Brave Talk.",
		Policies: map[string]Value{
			"BraveRewardsDisabled": Bool(true),
			"BraveWalletDisabled":  Bool(true),
			"BraveVPNDisabled":     Bool(true),
			"TorDisabled":          Bool(true),
			"BraveTalkEnabled":     Bool(false),
		},
	},
}

// Categories returns all categories in merge order. The returned policies
// are copies.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		c.Policies = maps.Clone(c.Policies)
		out[i] = c
	}
	return out
}

// CategoryIDs returns the category identifiers in merge order.
func CategoryIDs() []CategoryID {
	ids := make([]CategoryID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

// LookupCategory finds a category by ID.
func LookupCategory(id CategoryID) (Category, error) {
	for _, c := range categories {
		if c.ID == id {
			c.Policies = maps.Clone(c.Policies)
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
}

// BasePolicies returns a copy of the always-included policies.
func BasePolicies() Document {
	return Document(maps.Clone(basePolicies))
}

func categoryIndex(id CategoryID) int {
	for i, c := range categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}
