package policy

import (
	"encoding/json"
	"maps"
	"slices"
)

// schema declares the expected Kind of every policy key zerobrave knows about.
// Keys not listed here are passed through by Validate.
var schema = map[string]Kind{
	// Base hardening
	"DnsOverHttpsMode":       KindString,
	"HttpsUpgradesEnabled":   KindBool,
	"PromotionalTabsEnabled": KindBool,

	// AI
	"BraveAIChatEnabled":                  KindBool,
	"HelpMeWriteSettings":                 KindInt,
	"GeminiSettings":                      KindInt,
	"GenAiDefaultSettings":                KindInt,
	"GenAiLensOverlaySettings":            KindInt,
	"GenAILocalFoundationalModelSettings": KindInt,
	"LensRegionSearchEnabled":             KindBool,
	"LensDesktopNTPSearchEnabled":         KindBool,
	"LensOverlaySettings":                 KindInt,

	// Privacy
	"BlockThirdPartyCookies":                        KindBool,
	"PrivacySandboxFingerprintingProtectionEnabled": KindBool,
	"PrivacySandboxPromptEnabled":                   KindBool,
	"PrivacySandboxAdTopicsEnabled":                 KindBool,
	"PrivacySandboxSiteEnabledAdsEnabled":           KindBool,
	"PrivacySandboxAdMeasurementEnabled":            KindBool,
	"WebRtcIPHandling":                              KindString,
	"WebRtcEventLogCollectionAllowed":               KindBool,

	// Telemetry
	"MetricsReportingEnabled":                 KindBool,
	"DeviceMetricsReportingEnabled":           KindBool,
	"UrlKeyedAnonymizedDataCollectionEnabled": KindBool,
	"UrlKeyedMetricsAllowed":                  KindBool,
	"CloudProfileReportingEnabled":            KindBool,
	"CloudReportingEnabled":                   KindBool,
	"ReportExtensionsAndPluginsData":          KindBool,
	"ReportMachineIDData":                     KindBool,
	"ReportPolicyData":                        KindBool,
	"ReportUserIDData":                        KindBool,
	"ReportVersionData":                       KindBool,
	"UserFeedbackAllowed":                     KindBool,
	"FeedbackSurveysEnabled":                  KindBool,

	// Security
	"SafeBrowsingProtectionLevel":          KindInt,
	"SafeBrowsingExtendedReportingEnabled": KindBool,
	"SafeBrowsingSurveysEnabled":           KindBool,
	"ComponentUpdatesEnabled":              KindBool,

	// Autofill
	"PaymentMethodQueryEnabled":    KindBool,
	"AutofillAddressEnabled":       KindBool,
	"AutofillCreditCardEnabled":    KindBool,
	"AutofillPredictionSettings":   KindInt,
	"PasswordManagerEnabled":       KindBool,
	"PasswordLeakDetectionEnabled": KindBool,
	"PasswordSharingEnabled":       KindBool,

	// Sync
	"SyncDisabled":  KindBool,
	"BrowserSignin": KindInt,

	// Permissions, camera, microphone, screen
	"DefaultGeolocationSetting":          KindInt,
	"DefaultNotificationsSetting":        KindInt,
	"DefaultWebBluetoothGuardSetting":    KindInt,
	"DefaultWebUsbGuardSetting":          KindInt,
	"DefaultFileSystemReadGuardSetting":  KindInt,
	"DefaultFileSystemWriteGuardSetting": KindInt,
	"DefaultLocalFontsSetting":           KindInt,
	"DefaultSensorsSetting":              KindInt,
	"DefaultSerialGuardSetting":          KindInt,
	"DefaultCameraAccessAllowed":         KindBool,
	"DefaultMicAccessAllowed":            KindBool,
	"ScreenCaptureAllowed":               KindBool,
	"AutoplayAllowed":                    KindBool,

	// Brave. BraveVPNDisabled is left undeclared: published documents carry
	// it as both 1 and true.
	"BraveRewardsDisabled": KindBool,
	"BraveWalletDisabled":  KindBool,
	"TorDisabled":          KindBool,
	"BraveTalkEnabled":     KindBool,

	// Known but not set by any category
	"TranslateEnabled":          KindBool,
	"SpellcheckEnabled":         KindBool,
	"QuicAllowed":               KindBool,
	"DefaultCookiesSetting":     KindInt,
	"DiskCacheSize":             KindInt,
	"CookiesSessionOnlyForUrls": KindStringList,
}

// ExpectedKind returns the declared Kind for key. ok is false for keys the
// table does not know.
func ExpectedKind(key string) (kind Kind, ok bool) {
	kind, ok = schema[key]
	return kind, ok
}

// SchemaKeys returns every declared key in sorted order.
func SchemaKeys() []string {
	return slices.Sorted(maps.Keys(schema))
}

func (k Kind) jsonSchema() map[string]any {
	switch k {
	case KindBool:
		return map[string]any{"type": "boolean"}
	case KindInt:
		return map[string]any{"type": "integer"}
	case KindString:
		return map[string]any{"type": "string"}
	case KindStringList:
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	default:
		return map[string]any{}
	}
}

// JSONSchema renders the schema table as a draft-07 JSON Schema. Undeclared
// properties are allowed.
func JSONSchema() []byte {
	props := make(map[string]any, len(schema))
	for key, kind := range schema {
		props[key] = kind.jsonSchema()
	}
	doc := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Brave managed policies",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
	// Only maps of strings and maps; Marshal cannot fail.
	data, _ := json.MarshalIndent(doc, "", "  ")
	return data
}
