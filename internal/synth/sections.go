package synth

import (
	"time"

	"github.com/nao1215/sitescope/internal/model"
)

// Fixed overview values shared by every report.
const (
	sampleIPAddress    = "104.21.45.78"
	sampleResponseTime = "245ms"
)

func overview(target model.Target, now time.Time) model.Overview {
	domain := target.Hostname()
	return model.Overview{
		URL:            target.URL(),
		Domain:         domain,
		Title:          domain + " - Professional Website",
		Description:    "Advanced analysis results for " + domain,
		Status:         "Active",
		LastAnalyzed:   now,
		ResponseTime:   sampleResponseTime,
		HTTPStatus:     "200 OK",
		ServerLocation: "United States",
		IPAddress:      sampleIPAddress,
		Registrar:      "Cloudflare, Inc.",
		CreatedDate:    "2020-03-15",
		ExpiryDate:     "2025-03-15",
	}
}

// Item helpers, one per section layout.

func tech(name, version, description, icon string) model.Item {
	return model.Item{Name: name, Version: version, Description: description, Status: model.StatusDetected, Icon: icon}
}

func info(label, value string) model.Item {
	return model.Item{Name: label, Value: value}
}

func check(name string, status model.Status, description string) model.Item {
	return model.Item{Name: name, Status: status, Description: description}
}

func metric(label, value string, status model.Status) model.Item {
	return model.Item{Name: label, Value: value, Status: status}
}

func technologySection(string) model.Section {
	s := model.NewSection(model.TabTechnology)
	s.Set("frontend",
		tech("React", "18.2.0", "JavaScript Library", "fab fa-react"),
		tech("Next.js", "13.4.0", "React Framework", "fas fa-layer-group"),
		tech("TypeScript", "5.0.0", "Type-safe JavaScript", "fab fa-js-square"),
		tech("Tailwind CSS", "3.3.0", "Utility-first CSS", "fas fa-paint-brush"),
		tech("Webpack", "5.88.0", "Module Bundler", "fab fa-webpack"),
	)
	s.Set("backend",
		tech("Node.js", "18.16.0", "JavaScript Runtime", "fab fa-node-js"),
		tech("Express.js", "4.18.0", "Web Framework", "fas fa-server"),
		tech("MongoDB", "6.0.0", "NoSQL Database", "fas fa-database"),
		tech("Redis", "7.0.0", "In-memory Cache", "fas fa-memory"),
		tech("GraphQL", "16.6.0", "Query Language", "fas fa-project-diagram"),
	)
	s.Set("cloud",
		tech("Vercel", "", "Hosting Platform", "fas fa-cloud"),
		tech("AWS S3", "", "Object Storage", "fab fa-aws"),
		tech("Cloudflare", "", "CDN & Security", "fas fa-shield-alt"),
		tech("GitHub Actions", "", "CI/CD Pipeline", "fab fa-github"),
	)
	s.Set("analytics",
		tech("Google Analytics", "GA4", "Web Analytics", "fab fa-google"),
		tech("Hotjar", "", "User Behavior", "fas fa-chart-line"),
		tech("Mixpanel", "", "Product Analytics", "fas fa-chart-bar"),
		tech("Sentry", "", "Error Monitoring", "fas fa-bug"),
	)
	return s
}

func serverSection(domain string) model.Section {
	s := model.NewSection(model.TabServer)
	s.Set("server",
		info("Server Software", "nginx/1.20.2"),
		info("Operating System", "Ubuntu 22.04 LTS"),
		info("Web Server", "Nginx + Node.js"),
		info("Load Balancer", "Cloudflare"),
		info("Response Time", sampleResponseTime),
		info("Uptime", "99.98%"),
	)
	s.Set("dns",
		info("Name Servers", "ns1.cloudflare.com, ns2.cloudflare.com"),
		info("A Record", sampleIPAddress),
		info("AAAA Record", "2606:4700:3034::ac43:bd4e"),
		info("MX Record", "mail.google.com"),
		info("TXT Record", "v=spf1 include:_spf.google.com ~all"),
		info("CNAME Record", "www."+domain),
	)
	s.Set("ssl",
		info("SSL Provider", "Let's Encrypt"),
		info("Certificate Type", "Domain Validated (DV)"),
		info("Encryption", "TLS 1.3, 256-bit"),
		info("Valid From", "2024-01-15"),
		info("Valid Until", "2025-01-15"),
		info("Subject Alternative Names", domain+", www."+domain),
	)
	s.Set("cdn",
		info("CDN Provider", "Cloudflare"),
		info("Edge Locations", "200+ worldwide"),
		info("Cache Status", "HIT"),
		info("Compression", "Gzip, Brotli"),
		info("HTTP/2", "Enabled"),
		info("HTTP/3", "Enabled"),
	)
	return s
}

func securitySection(string) model.Section {
	s := model.NewSection(model.TabSecurity)
	s.Set("headers",
		check("Content-Security-Policy", model.StatusDetected, "XSS Protection enabled"),
		check("X-Frame-Options", model.StatusDetected, "Clickjacking protection"),
		check("X-Content-Type-Options", model.StatusDetected, "MIME type sniffing protection"),
		check("Strict-Transport-Security", model.StatusDetected, "HTTPS enforcement"),
		check("Referrer-Policy", model.StatusDetected, "Referrer information control"),
		check("Permissions-Policy", model.StatusWarning, "Feature policy not fully configured"),
	)
	s.Set("vulnerabilities",
		check("SQL Injection", model.StatusInfo, "No vulnerabilities detected"),
		check("XSS Vulnerabilities", model.StatusInfo, "Protected by CSP headers"),
		check("CSRF Protection", model.StatusDetected, "CSRF tokens implemented"),
		check("SSL/TLS Configuration", model.StatusDetected, "Strong encryption enabled"),
		check("Directory Traversal", model.StatusInfo, "No vulnerabilities found"),
		check("Outdated Dependencies", model.StatusWarning, "2 minor updates available"),
	)
	s.Set("privacy",
		check("GDPR Compliance", model.StatusDetected, "Cookie consent implemented"),
		check("Privacy Policy", model.StatusDetected, "Privacy policy found"),
		check("Terms of Service", model.StatusDetected, "Terms of service available"),
		check("Data Encryption", model.StatusDetected, "End-to-end encryption"),
		check("Cookie Policy", model.StatusDetected, "Cookie usage disclosed"),
	)

	tracker := func(name, kind, description string) model.Item {
		it := check(name, model.StatusDetected, description)
		it.Type = kind
		return it
	}
	s.Set("trackers",
		tracker("Google Analytics", "Analytics", "Web traffic analysis"),
		tracker("Facebook Pixel", "Marketing", "Conversion tracking"),
		tracker("Hotjar", "User Experience", "User behavior tracking"),
		tracker("Intercom", "Customer Support", "Live chat widget"),
	)
	return s
}

func performanceSection(string) model.Section {
	s := model.NewSection(model.TabPerformance)
	s.Set("loadTimes",
		metric("First Contentful Paint", "1.2s", model.StatusGood),
		metric("Largest Contentful Paint", "2.1s", model.StatusGood),
		metric("First Input Delay", "45ms", model.StatusGood),
		metric("Cumulative Layout Shift", "0.08", model.StatusGood),
		metric("Time to Interactive", "2.8s", model.StatusWarning),
		metric("Total Blocking Time", "180ms", model.StatusWarning),
	)
	s.Set("resourceSizes",
		metric("HTML Size", "45KB", model.StatusGood),
		metric("CSS Size", "128KB", model.StatusGood),
		metric("JavaScript Size", "342KB", model.StatusWarning),
		metric("Images Size", "1.2MB", model.StatusWarning),
		metric("Fonts Size", "89KB", model.StatusGood),
		metric("Total Size", "1.8MB", model.StatusWarning),
	)
	s.Set("mobile",
		metric("Mobile Score", "78/100", model.StatusWarning),
		metric("Mobile Load Time", "3.2s", model.StatusWarning),
		metric("Mobile FCP", "1.8s", model.StatusWarning),
		metric("Mobile LCP", "3.1s", model.StatusWarning),
		metric("Responsive Design", "Yes", model.StatusGood),
		metric("Touch Targets", "Optimized", model.StatusGood),
	)
	s.Set("optimization",
		metric("Image Optimization", "Partial", model.StatusWarning),
		metric("Code Minification", "Yes", model.StatusGood),
		metric("Gzip Compression", "Yes", model.StatusGood),
		metric("Browser Caching", "Yes", model.StatusGood),
		metric("Lazy Loading", "Yes", model.StatusGood),
		metric("Critical CSS", "No", model.StatusError),
	)
	return s
}

func seoSection(domain string) model.Section {
	s := model.NewSection(model.TabSEO)
	s.Set("metaTags",
		metric("Title Tag", domain+" - Professional Website", model.StatusGood),
		metric("Meta Description", "Professional website with modern design...", model.StatusGood),
		metric("Meta Keywords", "Not used (recommended)", model.StatusInfo),
		metric("Canonical URL", "https://"+domain+"/", model.StatusGood),
		metric("Open Graph Tags", "8 tags found", model.StatusGood),
		metric("Twitter Cards", "Summary card", model.StatusGood),
	)
	s.Set("contentStructure",
		metric("H1 Tags", "1 found", model.StatusGood),
		metric("H2 Tags", "5 found", model.StatusGood),
		metric("H3 Tags", "12 found", model.StatusGood),
		metric("Word Count", "1,247 words", model.StatusGood),
		metric("Reading Level", "Grade 8", model.StatusGood),
		metric("Content Quality", "High", model.StatusGood),
	)
	s.Set("links",
		metric("Internal Links", "23 links", model.StatusGood),
		metric("External Links", "8 links", model.StatusGood),
		metric("Broken Links", "0 found", model.StatusGood),
		metric("Nofollow Links", "3 links", model.StatusInfo),
		metric("Link Depth", "Average 2.1", model.StatusGood),
		metric("Anchor Text", "Optimized", model.StatusGood),
	)
	s.Set("schema",
		metric("JSON-LD", "Organization schema", model.StatusDetected),
		metric("Microdata", "Not found", model.StatusInfo),
		metric("RDFa", "Not found", model.StatusInfo),
		metric("Breadcrumbs", "Schema found", model.StatusDetected),
		metric("Article Schema", "Found on blog posts", model.StatusDetected),
		metric("FAQ Schema", "Not found", model.StatusWarning),
	)
	return s
}

func apisSection(string) model.Section {
	endpoint := func(path, method, description string) model.Item {
		return model.Item{Name: path, Method: method, Description: description, Status: model.StatusDetected}
	}
	apiKey := func(name, key, description string) model.Item {
		return model.Item{Name: name, Key: key, Description: description, Status: model.StatusDetected}
	}
	social := func(name, version, description string) model.Item {
		return model.Item{Name: name, Version: version, Description: description, Status: model.StatusDetected}
	}

	s := model.NewSection(model.TabAPIs)
	s.Set("endpoints",
		endpoint("/api/auth", "POST", "User authentication"),
		endpoint("/api/users", "GET", "User data retrieval"),
		endpoint("/api/products", "GET", "Product catalog API"),
		endpoint("/api/orders", "POST", "Order processing"),
		endpoint("/api/payments", "POST", "Payment processing"),
		endpoint("/api/webhooks", "POST", "Webhook endpoints"),
	)
	s.Set("keys",
		apiKey("Google Maps API", "AIza***************", "Maps integration"),
		apiKey("Stripe API", "pk_live_***********", "Payment processing"),
		apiKey("SendGrid API", "SG.***************", "Email service"),
		apiKey("Firebase API", "firebase-***********", "Backend services"),
		apiKey("Cloudinary API", "cloudinary_***********", "Image management"),
	)
	s.Set("social",
		social("Facebook Graph API", "v18.0", "Social login & sharing"),
		social("Twitter API", "v2", "Tweet integration"),
		social("LinkedIn API", "v2", "Professional networking"),
		social("Instagram Basic Display", "v1", "Photo integration"),
		social("YouTube Data API", "v3", "Video content"),
	)
	s.Set("realtime",
		model.Item{Name: "WebSocket Connection", Protocol: "WSS", Status: model.StatusActive, Description: "Real-time messaging"},
		model.Item{Name: "Socket.IO", Version: "4.7.0", Status: model.StatusDetected, Description: "Real-time communication"},
		model.Item{Name: "Server-Sent Events", Status: model.StatusDetected, Description: "Live updates"},
		model.Item{Name: "WebRTC", Status: model.StatusDetected, Description: "Video/audio calls"},
		model.Item{Name: "Push Notifications", Service: "Firebase FCM", Status: model.StatusDetected, Description: "Mobile notifications"},
	)
	return s
}

func assetsSection(string) model.Section {
	image := func(name, size, format string, status model.Status) model.Item {
		return model.Item{Name: name, Size: size, Format: format, Status: status}
	}
	script := func(name, size, kind string) model.Item {
		return model.Item{Name: name, Size: size, Type: kind, Status: model.StatusMinified}
	}
	external := func(name, domain string) model.Item {
		return model.Item{Name: name, Domain: domain, Status: model.StatusLoaded}
	}

	s := model.NewSection(model.TabAssets)
	s.Set("images",
		image("hero-banner.jpg", "245KB", "JPEG", model.StatusOptimized),
		image("logo.svg", "12KB", "SVG", model.StatusOptimized),
		image("product-gallery/", "1.2MB", "WebP", model.StatusOptimized),
		image("avatars/", "89KB", "PNG", model.StatusWarning),
		image("icons/", "45KB", "SVG", model.StatusOptimized),
		image("backgrounds/", "567KB", "JPEG", model.StatusWarning),
	)
	s.Set("scripts",
		script("main.bundle.js", "234KB", "Application"),
		script("vendor.bundle.js", "456KB", "Libraries"),
		script("analytics.js", "23KB", "Tracking"),
		script("polyfills.js", "67KB", "Compatibility"),
		script("service-worker.js", "12KB", "PWA"),
	)
	s.Set("fonts",
		model.Item{Name: "Inter", Variants: "6 weights", Format: "WOFF2", Status: model.StatusOptimized},
		model.Item{Name: "Font Awesome", Version: "6.4.0", Format: "WOFF2", Status: model.StatusOptimized},
		model.Item{Name: "Roboto", Variants: "4 weights", Format: "WOFF2", Status: model.StatusOptimized},
		model.Item{Name: "Custom Icons", Size: "34KB", Format: "WOFF2", Status: model.StatusOptimized},
	)
	s.Set("external",
		external("Google Fonts", "fonts.googleapis.com"),
		external("Cloudflare CDN", "cdnjs.cloudflare.com"),
		external("jQuery CDN", "code.jquery.com"),
		external("Bootstrap CDN", "cdn.jsdelivr.net"),
		external("Font Awesome CDN", "use.fontawesome.com"),
	)
	return s
}
