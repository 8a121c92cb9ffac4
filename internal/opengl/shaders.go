package opengl

// MaxLights is the number of directional lights the main shader accepts.
const MaxLights = 4

// Texture units used by the main shader.
const (
	unitBaseColor = iota
	unitShadow
	unitNormal
	unitRoughness
	unitBump
	unitAO
	unitOcclusion
	unitEnv
	unitDisplacement
)

// vertSrc transforms positions, passes both UV sets through and applies the
// optional displacement map along the normal.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec3 inTangent;
layout(location = 5) in vec3 inBitangent;
layout(location = 6) in vec2 inUV2;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;

uniform sampler2D displacementMap;
uniform bool      hasDisplacementMap;
uniform float     displacementScale;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec2 fragUV2;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;
out vec3 fragTangent;
out vec3 fragBitangent;

void main() {
    vec3 pos = inPosition;
    if (hasDisplacementMap && displacementScale != 0.0) {
        pos += normalize(inNormal) * textureLod(displacementMap, inUV, 0.0).r * displacementScale;
    }

    mat3 normalMat = mat3(model);
    vec4 worldPos  = model * vec4(pos, 1.0);

    gl_Position       = mvp * vec4(pos, 1.0);
    fragColor         = inColor;
    fragNormal        = normalMat * inNormal;
    fragUV            = inUV;
    fragUV2           = inUV2;
    fragWorldPos      = worldPos.xyz;
    fragLightSpacePos = lightViewProj * worldPos;
    fragTangent       = normalMat * inTangent;
    fragBitangent     = normalMat * inBitangent;
}
` + "\x00"

// fragSrc is a metallic-roughness Cook-Torrance shader. Indirect light
// comes from an equirectangular environment map when one is bound,
// otherwise from a flat ambient term.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec2 fragUV2;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;
in vec3 fragTangent;
in vec3 fragBitangent;

out vec4 outColor;

#define MAX_LIGHTS 4
uniform int   lightCount;
uniform vec3  lightDir[MAX_LIGHTS];
uniform vec3  lightRadiance[MAX_LIGHTS];
uniform int   shadowLight;
uniform vec3  ambientColor;

uniform vec3 cameraPos;

uniform vec3  matColor;
uniform float matRoughness;
uniform float matMetalness;
uniform float envMapIntensity;
uniform float bumpScale;
uniform float aoMapIntensity;

uniform sampler2D baseColorMap;
uniform bool      hasBaseColorMap;
uniform sampler2DShadow shadowMap;
uniform bool      hasShadows;
uniform float     shadowTexel;
uniform sampler2D normalMap;
uniform bool      hasNormalMap;
uniform sampler2D roughnessMap;
uniform bool      hasRoughnessMap;
uniform sampler2D bumpMap;
uniform bool      hasBumpMap;
uniform sampler2D aoMap;
uniform bool      hasAOMap;
uniform sampler2D occlusionMap;
uniform bool      hasOcclusionMap;

uniform sampler2D envMap;
uniform bool      hasEnvMap;
uniform float     envMaxLod;

const float PI = 3.14159265359;

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - 0.002));
        }
    }
    return shadow / 9.0;
}

float DistributionGGX(vec3 N, vec3 H, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float NdH = max(dot(N, H), 0.0);
    float d   = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

float GeometrySmith(float NdV, float NdL, float roughness) {
    return GeometrySchlickGGX(NdV, roughness) * GeometrySchlickGGX(NdL, roughness);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 FresnelSchlickRoughness(float cosTheta, vec3 F0, float roughness) {
    return F0 + (max(vec3(1.0 - roughness), F0) - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 evalPBR(vec3 N, vec3 V, vec3 L, vec3 rad, vec3 albedo, float metallic, float roughness, vec3 F0) {
    float NdL = max(dot(N, L), 0.0);
    if (NdL <= 0.0) return vec3(0.0);

    vec3  H   = normalize(V + L);
    float NdV = max(dot(N, V), 0.0);

    float D  = DistributionGGX(N, H, roughness);
    float G  = GeometrySmith(NdV, NdL, roughness);
    vec3  F  = FresnelSchlick(max(dot(H, V), 0.0), F0);

    vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);
    vec3 specular = D * G * F / max(4.0 * NdV * NdL, 0.001);

    return (kD * albedo / PI + specular) * rad * NdL;
}

// Equirectangular lookup. Row 0 of the image is straight up.
vec3 sampleEnv(vec3 dir, float lod) {
    vec2 uv = vec2(atan(dir.z, dir.x) / (2.0 * PI) + 0.5, 0.5 - asin(clamp(dir.y, -1.0, 1.0)) / PI);
    return textureLod(envMap, uv, lod).rgb;
}

// Screen-space derivative bump mapping.
vec3 perturbNormalBump(vec3 N) {
    vec2 dSTdx = dFdx(fragUV);
    vec2 dSTdy = dFdy(fragUV);
    float Hll = bumpScale * texture(bumpMap, fragUV).r;
    float dBx = bumpScale * texture(bumpMap, fragUV + dSTdx).r - Hll;
    float dBy = bumpScale * texture(bumpMap, fragUV + dSTdy).r - Hll;

    vec3 vSigmaX = dFdx(fragWorldPos);
    vec3 vSigmaY = dFdy(fragWorldPos);
    vec3 R1 = cross(vSigmaY, N);
    vec3 R2 = cross(N, vSigmaX);
    float fDet = dot(vSigmaX, R1) * (gl_FrontFacing ? 1.0 : -1.0);
    vec3 vGrad = sign(fDet) * (dBx * R1 + dBy * R2);
    return normalize(abs(fDet) * N - vGrad);
}

void main() {
    vec3 N = normalize(fragNormal);
    if (hasNormalMap) {
        mat3 TBN = mat3(normalize(fragTangent), normalize(fragBitangent), N);
        N = normalize(TBN * (texture(normalMap, fragUV).rgb * 2.0 - 1.0));
    }
    if (hasBumpMap) {
        N = perturbNormalBump(N);
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec4 baseColor = fragColor * vec4(matColor, 1.0);
    if (hasBaseColorMap) {
        baseColor *= texture(baseColorMap, fragUV);
    }
    vec3 albedo = baseColor.rgb;

    float metallic  = matMetalness;
    float roughness = matRoughness;
    if (hasRoughnessMap) {
        roughness *= texture(roughnessMap, fragUV).g;
    }
    roughness = clamp(roughness, 0.04, 1.0);
    vec3 F0 = mix(vec3(0.04), albedo, metallic);

    float ao = 1.0;
    if (hasAOMap) {
        ao = (texture(aoMap, fragUV2).r - 1.0) * aoMapIntensity + 1.0;
    }
    if (hasOcclusionMap) {
        ao *= texture(occlusionMap, fragUV).r;
    }

    vec3 color;
    if (hasEnvMap) {
        float NdV  = max(dot(N, V), 0.0);
        vec3 F     = FresnelSchlickRoughness(NdV, F0, roughness);
        vec3 kD    = (vec3(1.0) - F) * (1.0 - metallic);
        vec3 irradiance = sampleEnv(N, envMaxLod);
        vec3 diffuse    = irradiance * albedo * kD;
        vec3 specular   = sampleEnv(reflect(-V, N), roughness * envMaxLod) * F;
        color = (diffuse + specular) * envMapIntensity * ao;
    } else {
        color = ambientColor * albedo / PI * ao;
    }

    for (int i = 0; i < lightCount && i < MAX_LIGHTS; i++) {
        vec3 rad = lightRadiance[i];
        if (hasShadows && i == shadowLight) {
            rad *= calcShadow();
        }
        color += evalPBR(N, V, normalize(-lightDir[i]), rad, albedo, metallic, roughness, F0);
    }

    outColor = vec4(color, baseColor.a);
}
` + "\x00"

const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// ppVertSrc draws a fullscreen triangle from gl_VertexID.
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// ppFragSrc applies exposure, ACES filmic tone mapping and the sRGB
// transfer curve. Pixels no geometry covered show the background color
// untouched.
const ppFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform sampler2D depthBuffer;
uniform float     exposure;
uniform vec3      background;

// Narkowicz ACES fit.
vec3 ACESFilm(vec3 x) {
    const float a = 2.51;
    const float b = 0.03;
    const float c = 2.43;
    const float d = 0.59;
    const float e = 0.14;
    return clamp((x * (a * x + b)) / (x * (c * x + d) + e), 0.0, 1.0);
}

vec3 linearToSRGB(vec3 c) {
    vec3 lo = c * 12.92;
    vec3 hi = 1.055 * pow(c, vec3(1.0 / 2.4)) - 0.055;
    return mix(lo, hi, step(vec3(0.0031308), c));
}

void main() {
    if (texture(depthBuffer, fragUV).r >= 1.0) {
        outColor = vec4(background, 1.0);
        return;
    }
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;
    outColor = vec4(linearToSRGB(ACESFilm(hdr * exposure)), 1.0);
}
` + "\x00"
